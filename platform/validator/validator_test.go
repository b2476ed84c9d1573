package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	LeadIDs []string `validate:"omitempty,max=2,dive,uuid"`
	Limit   int      `validate:"omitempty,min=1,max=100"`
}

func TestFieldErrors(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{}))

	err := v.Struct(sample{LeadIDs: []string{"a", "b", "c"}, Limit: 500})
	assert.Equal(t, map[string]string{"leadIDs": "max=2", "limit": "max=100"}, FieldErrors(err))

	assert.Nil(t, FieldErrors(errors.New("plain")))
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("11111111-1111-1111-1111-111111111111", "uuid"))
	assert.Error(t, v.Var("nope", "uuid"))
}
