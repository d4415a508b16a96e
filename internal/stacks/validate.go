package stacks

import (
	"fmt"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

// ValidateStack rejects settings the kind cannot honour.
func ValidateStack(def Definition, s *entity.Stack) error {
	if def.Singleton() && s.GetReplicas() > 1 {
		return fmt.Errorf("%w: kind %s runs a single replica, got replicas %d", domain.ErrInvalidType, def.Kind(), s.Replicas)
	}
	return nil
}

// ValidateConfig runs ValidateStack on every stack and rejects docker volume
// or secret names derived for two different stacks.
func (r *Registry) ValidateConfig(cfg *entity.Config) error {
	owners := make(map[string]string)
	claim := func(objectKind, name, stack string) error {
		key := objectKind + "/" + name
		if existing, ok := owners[key]; ok && existing != stack {
			return fmt.Errorf("%w: %s '%s' is claimed by both stacks '%s' and '%s'", domain.ErrResourceConflict, objectKind, name, existing, stack)
		}
		owners[key] = stack
		return nil
	}

	for i := range cfg.Stacks {
		s := &cfg.Stacks[i]
		def, err := r.Lookup(s.Kind)
		if err != nil {
			return domain.WrapEntity("stack", s.Name, err)
		}
		if err := ValidateStack(def, s); err != nil {
			return domain.WrapEntity("stack", s.Name, err)
		}
		for _, name := range def.Volumes(s) {
			if err := claim("volume", name, s.Name); err != nil {
				return err
			}
		}
		for _, name := range def.Secrets(s) {
			if err := claim("secret", name, s.Name); err != nil {
				return err
			}
		}
	}
	return nil
}
