package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mmynk/groupcard/internal/config"
	"github.com/mmynk/groupcard/internal/orchestrator"
)

// seedNamespace derives stable group IDs from seed names, so restarting
// against a persistent store does not create duplicates.
var seedNamespace = uuid.MustParse("5d0c7f8e-6a0b-4c57-9a59-3f1d2c4b8e11")

func seedGroups(ctx context.Context, orch *orchestrator.Orchestrator, seeds []config.GroupSeed, logger *slog.Logger) error {
	for _, seed := range seeds {
		id := uuid.NewSHA1(seedNamespace, []byte(seed.Name)).String()

		_, err := orch.GetGroup(ctx, id)
		if err == nil {
			logger.Debug("Seed group already present", "group_id", id, "name", seed.Name)
			continue
		}
		if !errors.Is(err, orchestrator.ErrGroupNotFound) {
			return err
		}

		members := make([]orchestrator.NewMember, len(seed.Members))
		for i, m := range seed.Members {
			members[i] = orchestrator.NewMember{
				ID:               m.ID,
				Name:             m.Name,
				Email:            m.Email,
				PaymentMethodRef: m.PaymentMethodRef,
			}
		}
		if _, err := orch.CreateGroupWithID(ctx, id, seed.Name, members); err != nil {
			return fmt.Errorf("group %q: %w", seed.Name, err)
		}
		logger.Info("Seeded group", "group_id", id, "name", seed.Name)
	}
	return nil
}
