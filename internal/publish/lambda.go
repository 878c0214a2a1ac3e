package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"adstudio/internal/domain"
)

// LambdaAPI is the subset of the Lambda client used for dispatch.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaPublisher invokes the downstream function asynchronously. Only the
// acceptance of the event is confirmed, never its processing.
type LambdaPublisher struct {
	client LambdaAPI
}

func NewLambdaPublisher(client LambdaAPI) (*LambdaPublisher, error) {
	if client == nil {
		return nil, errors.New("publish: lambda client is required")
	}
	return &LambdaPublisher{client: client}, nil
}

func (p *LambdaPublisher) Publish(ctx context.Context, target string, event domain.PublishEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish: encode event: %w: %w", domain.ErrDispatch, err)
	}
	out, err := p.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(target),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("publish: invoke %s: %w: %w", target, domain.ErrDispatch, err)
	}
	if out.FunctionError != nil {
		return fmt.Errorf("publish: invoke %s: function error %q: %w", target, aws.ToString(out.FunctionError), domain.ErrDispatch)
	}
	if out.StatusCode != http.StatusAccepted {
		return fmt.Errorf("publish: invoke %s returned status %d: %w", target, out.StatusCode, domain.ErrDispatch)
	}
	return nil
}
