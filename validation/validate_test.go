package validation

import (
	"testing"

	"storefront-api/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string `json:"city" validate:"required"`
}

type signUp struct {
	Name     string    `json:"name" validate:"required,max=50"`
	Email    string    `json:"email" validate:"required,email"`
	Method   string    `json:"paymentMethod" validate:"required,oneof=card cash"`
	SKU      string    `json:"sku" validate:"omitempty,sku"`
	Color    string    `json:"value" validate:"omitempty,hexcolor"`
	Tags     []string  `json:"tags" validate:"max=2"`
	Address  address   `json:"address"`
	Lines    []address `json:"lines" validate:"dive"`
	internal string
}

func TestStructTrimsBeforeValidating(t *testing.T) {
	in := &signUp{
		Name:     "  Ada  ",
		Email:    " ada@example.com ",
		Method:   " card",
		Address:  address{City: "  Oslo "},
		Lines:    []address{{City: " Bergen "}},
		internal: "  untouched ",
	}
	require.NoError(t, Struct(in))
	assert.Equal(t, "Ada", in.Name)
	assert.Equal(t, "ada@example.com", in.Email)
	assert.Equal(t, "card", in.Method)
	assert.Equal(t, "Oslo", in.Address.City)
	assert.Equal(t, "Bergen", in.Lines[0].City)
	assert.Equal(t, "  untouched ", in.internal)
}

func TestStructMessages(t *testing.T) {
	valid := func() *signUp {
		return &signUp{Name: "Ada", Email: "ada@example.com", Method: "card", Address: address{City: "Oslo"}}
	}

	tests := []struct {
		name    string
		mutate  func(*signUp)
		message string
	}{
		{name: "blank after trim", mutate: func(s *signUp) { s.Name = "   " }, message: "name is required"},
		{name: "email", mutate: func(s *signUp) { s.Email = "nope" }, message: "Please enter a valid email address"},
		{name: "enum", mutate: func(s *signUp) { s.Method = "crypto" }, message: "paymentMethod must be one of [card cash]"},
		{name: "sku", mutate: func(s *signUp) { s.SKU = "ab" }, message: "sku must be 3-32 upper-case letters, digits or dashes"},
		{name: "hex", mutate: func(s *signUp) { s.Color = "red" }, message: "value must be a hex color such as #1A2B3C"},
		{name: "slice max", mutate: func(s *signUp) { s.Tags = []string{"a", "b", "c"} }, message: "tags must contain at most 2 item(s)"},
		{name: "nested", mutate: func(s *signUp) { s.Address.City = "" }, message: "city is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(in)
			err := Struct(in)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestVar(t *testing.T) {
	require.NoError(t, Var("rating", 3, "min=1,max=5"))
	err := Var("rating", 6, "min=1,max=5")
	require.Error(t, err)
	assert.Equal(t, "rating must be at most 5", err.Error())
}
