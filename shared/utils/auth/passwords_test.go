package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordViolations(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "acceptable password",
			password: "s3cure-enough-pw",
			want:     nil,
		},
		{
			name:     "too short",
			password: "short1",
			want:     []string{ErrPasswordTooShort.Error()},
		},
		{
			name:     "entirely numeric but long",
			password: "98127364509",
			want:     []string{ErrPasswordNumeric.Error()},
		},
		{
			name:     "common password",
			password: "iloveyou",
			want:     []string{ErrPasswordCommon.Error()},
		},
		{
			name:     "short and numeric",
			password: "1234",
			want:     []string{ErrPasswordTooShort.Error(), ErrPasswordNumeric.Error()},
		},
		{
			name:     "numeric and common",
			password: "12345678",
			want:     []string{ErrPasswordNumeric.Error(), ErrPasswordCommon.Error()},
		},
		{
			name:     "common list is case insensitive",
			password: "PASSWORD",
			want:     []string{ErrPasswordCommon.Error()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordViolations(tt.password))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("perfectly-fine-password"))
	assert.Error(t, ValidatePassword("1234"))
}
