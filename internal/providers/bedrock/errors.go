package bedrock

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"adstudio/internal/domain"
)

// classify maps a runtime error onto the domain taxonomy. Errors where the
// model answered but the answer was unusable become ErrBackendResponse;
// everything else (transport, throttling, auth) is ErrBackendUnavailable.
func classify(op string, err error) error {
	var (
		deserialize *smithy.DeserializationError
		modelErr    *types.ModelErrorException
	)
	switch {
	case errors.As(err, &deserialize), errors.As(err, &modelErr):
		return fmt.Errorf("bedrock: %s: %w: %w", op, domain.ErrBackendResponse, err)
	default:
		return fmt.Errorf("bedrock: %s: %w: %w", op, domain.ErrBackendUnavailable, err)
	}
}
