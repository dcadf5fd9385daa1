package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "grunnlag/pkg/domain-errors"
)

func TestParseSakID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SakID
		wantErr bool
	}{
		{"positive", "4242", 4242, false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "sak-1", 0, true},
		{"empty", "", 0, true},
		{"overflow", strings.Repeat("9", 30), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSakID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestParseUUIDBackedIDs(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseBehandlingID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseOpplysningID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("text round trip", func(t *testing.T) {
		id := BehandlingID(uuid.New())
		b, err := id.MarshalText()
		require.NoError(t, err)

		var parsed BehandlingID
		require.NoError(t, parsed.UnmarshalText(b))
		assert.Equal(t, id, parsed)
	})
}

func TestFolkeregisteridentifikator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"eleven digits", "09498230323", false},
		{"ten digits", "0949823032", true},
		{"twelve digits", "094982303231", true},
		{"letters", "0949823032A", true},
		{"whitespace", " 09498230323", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fnr, err := ParseFolkeregisteridentifikator(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				assert.True(t, fnr.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, fnr.String())
		})
	}

	t.Run("json uses the bare string", func(t *testing.T) {
		fnr := MustFolkeregisteridentifikator("09498230323")
		b, err := json.Marshal(fnr)
		require.NoError(t, err)
		assert.JSONEq(t, `"09498230323"`, string(b))

		var decoded Folkeregisteridentifikator
		require.NoError(t, json.Unmarshal(b, &decoded))
		assert.Equal(t, fnr, decoded)

		assert.Error(t, json.Unmarshal([]byte(`"123"`), &decoded))
	})
}
