// Package profile reads and writes the one-time user record.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/Makepad-fr/tally/internal/kv"
	"github.com/Makepad-fr/tally/internal/model"
)

const DefaultKey = "user"

// Load returns the stored profile. ok is false when none was created yet.
func Load(ctx context.Context, a kv.Adapter, key string) (p model.Profile, ok bool, err error) {
	if key == "" {
		key = DefaultKey
	}
	data, err := a.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return model.Profile{}, false, nil
		}
		return model.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	if err := sonic.ConfigStd.UnmarshalFromString(data, &p); err != nil {
		return model.Profile{}, false, fmt.Errorf("parse profile: %w", err)
	}
	return p, true, nil
}

// Save validates p and writes it.
func Save(ctx context.Context, a kv.Adapter, key string, p model.Profile) error {
	if key == "" {
		key = DefaultKey
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.ProfileImageURL = strings.TrimSpace(p.ProfileImageURL)
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := a.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
