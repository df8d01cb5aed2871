package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{term: "Tee", want: "%tee%"},
		{term: "100%", want: `%100\%%`},
		{term: "a_b", want: `%a\_b%`},
		{term: `c:\x`, want: `%c:\\x%`},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.term))
		})
	}
}
