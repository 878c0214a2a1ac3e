// Package publish dispatches generation events to the downstream consumer.
package publish

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"adstudio/internal/domain"
)

// Resolver turns the configured downstream function name into an invocable
// target, borrowing partition, region and account from the running function.
type Resolver struct {
	FunctionName string
	// Region is used when the invoked ARN carries none.
	Region string
}

// Target resolves the downstream function for an invocation. A full ARN in
// FunctionName is used as is; without an invoked ARN the bare name is
// returned, which Lambda resolves in the caller's account and region.
func (r Resolver) Target(invokedARN string) (string, error) {
	name := strings.TrimSpace(r.FunctionName)
	if name == "" {
		return "", fmt.Errorf("publish: downstream function not configured: %w", domain.ErrDispatch)
	}
	if arn.IsARN(name) {
		return name, nil
	}
	invokedARN = strings.TrimSpace(invokedARN)
	if invokedARN == "" {
		return name, nil
	}

	self, err := arn.Parse(invokedARN)
	if err != nil {
		return "", fmt.Errorf("publish: parse invoked arn %q: %w: %w", invokedARN, domain.ErrDispatch, err)
	}
	region := self.Region
	if region == "" {
		region = r.Region
	}
	return arn.ARN{
		Partition: self.Partition,
		Service:   "lambda",
		Region:    region,
		AccountID: self.AccountID,
		Resource:  "function:" + name,
	}.String(), nil
}
