package model

import (
	"testing"
	"time"

	apperrors "gomarket/internal/shared/errors"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"user", RoleUser, false},
		{"seller", RoleSeller, false},
		{"admin", RoleAdmin, false},
		{" Admin ", RoleAdmin, false},
		{"SELLER", RoleSeller, false},
		{"superuser", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, apperrors.ErrInvalidRole, "input %q", tt.in)
			continue
		}
		assert.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSessionRecord_Expired(t *testing.T) {
	now := time.Now().UnixMilli()
	rec := &SessionRecord{ExpiresAt: now + 1000}
	assert.False(t, rec.Expired(now))
	assert.True(t, rec.Expired(now+1000))
	assert.True(t, rec.Expired(now+5000))
}

func TestSessionRecord_Clone(t *testing.T) {
	rec := &SessionRecord{SessionID: "s1", UserID: "u1", Role: RoleUser}
	clone := rec.Clone()
	clone.UserID = "mutated"
	assert.Equal(t, "u1", rec.UserID)

	var nilRec *SessionRecord
	assert.Nil(t, nilRec.Clone())
}

func TestSessionRecord_Validate(t *testing.T) {
	now := time.Now().UnixMilli()
	valid := &SessionRecord{
		SessionID: "abc",
		UserID:    "u1",
		Email:     "u@example.com",
		Role:      RoleSeller,
		CreatedAt: now,
		ExpiresAt: now + 1000,
	}
	assert.NoError(t, valid.Validate())

	missingID := valid.Clone()
	missingID.SessionID = ""
	assert.Error(t, missingID.Validate())

	badRole := valid.Clone()
	badRole.Role = "root"
	assert.ErrorIs(t, badRole.Validate(), apperrors.ErrInvalidRole)

	inverted := valid.Clone()
	inverted.ExpiresAt = inverted.CreatedAt
	assert.Error(t, inverted.Validate())
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("buyer@example.com"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail(""))
}
