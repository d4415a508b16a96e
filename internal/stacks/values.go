package stacks

import (
	"fmt"

	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

// PromptFunc asks the operator for one input. Returning "" accepts the default.
type PromptFunc func(in Input) (string, error)

// ResolveValues fills each input from the stack's params, then prompt, then
// the input default. need reports whether an input still wants a value once
// params are exhausted; nil means every input does.
func ResolveValues(def Definition, s *entity.Stack, secrets map[string]string, prompt PromptFunc, need func(Input) bool) (Values, error) {
	values := make(Values)
	for _, in := range def.Inputs() {
		if ref, ok := s.Params[in.Key]; ok {
			v, err := ref.Resolve(secrets)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", in.Key, err)
			}
			if v != "" {
				values[in.Key] = v
				continue
			}
		}
		if need != nil && !need(in) {
			continue
		}
		if prompt != nil {
			v, err := prompt(in)
			if err != nil {
				return nil, fmt.Errorf("input %s: %w", in.Key, err)
			}
			if v != "" {
				values[in.Key] = v
				continue
			}
		}
		if in.Default != "" {
			values[in.Key] = in.Default
		}
	}
	return values, nil
}
