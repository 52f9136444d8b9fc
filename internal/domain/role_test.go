package domain_test

import (
	"testing"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    domain.Role
		wantErr error
	}{
		{raw: "confessor", want: domain.RoleConfessor},
		{raw: " Listener ", want: domain.RoleListener},
		{raw: "", want: domain.RoleUnset, wantErr: domain.ErrInvalidRole},
		{raw: "admin", want: domain.RoleUnset, wantErr: domain.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := domain.ParseRole(tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_LabelAndOpposite(t *testing.T) {
	assert.Equal(t, "Confessor", domain.RoleConfessor.Label())
	assert.Equal(t, "Listener", domain.RoleListener.Label())
	assert.Equal(t, "", domain.RoleUnset.Label())

	assert.Equal(t, domain.RoleListener, domain.RoleConfessor.Opposite())
	assert.Equal(t, domain.RoleConfessor, domain.RoleListener.Opposite())
	assert.Equal(t, domain.RoleUnset, domain.RoleUnset.Opposite())

	assert.Equal(t, "confessor", domain.RoleConfessor.String())
	assert.Equal(t, "unset", domain.RoleUnset.String())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    domain.Mode
		wantErr error
	}{
		{raw: "normal", want: domain.ModeNormal},
		{raw: "LISTENING", want: domain.ModeListening},
		{raw: "solo", want: domain.ModeSolo},
		{raw: "burn", wantErr: domain.ErrInvalidMode},
		{raw: "", wantErr: domain.ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := domain.ParseMode(tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}
