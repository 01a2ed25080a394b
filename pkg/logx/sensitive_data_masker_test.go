package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"home_pricer/pkg/logx"
)

func TestSensitiveDataMaskerMask(t *testing.T) {
	rq := require.New(t)

	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name   string
		input  []byte
		output []byte
	}{
		{
			name:   "Password",
			input:  []byte(`{"hello":"world","password":"abc123"}`),
			output: []byte(`{"hello":"world","password":"[MASKED]"}`),
		},
		{
			name:   "Password capital letter",
			input:  []byte(`{"hello":"world","Password":"abc123"}`),
			output: []byte(`{"hello":"world","Password":"[MASKED]"}`),
		},
		{
			name:   "Access token",
			input:  []byte(`{"accessToken":"eyJhbGciOiJFUzI1NiIsInR5cC","refreshToken":"eyJhbGciOiJFUzI1NiIsInR5cCI6IkpXVCJ9"}`),
			output: []byte(`{"accessToken":"[MASKED]","refreshToken":"[MASKED]"}`),
		},
		{
			name:   "Owner name, address and email",
			input:  []byte(`{"listing": {"ownerName": "John Doe", "address": "1523 NE 92nd St", "email": "john@doe.com"}, "sqftLiving": 1890}`),
			output: []byte(`{"listing": {"ownerName": "[MASKED]", "address": "[MASKED]", "email": "[MASKED]"}, "sqftLiving": 1890}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			output := masker.Mask(tc.input)

			rq.Equal(tc.output, output, "%s vs %s", tc.output, output)
		})
	}
}
