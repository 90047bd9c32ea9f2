package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantType    string
		wantContent string
		wantErr     bool
	}{
		{name: "sync object", data: `{"type":"sync","content":{"shapes":["A"]}}`, wantType: "sync", wantContent: `{"shapes":["A"]}`},
		{name: "sync array", data: `{"type":"sync","content":[1,2]}`, wantType: "sync", wantContent: `[1,2]`},
		{name: "sync explicit null", data: `{"type":"sync","content":null}`, wantType: "sync", wantContent: `null`},
		{name: "other type passes through", data: `{"type":"ping"}`, wantType: "ping"},
		{name: "sync without content", data: `{"type":"sync"}`, wantErr: true},
		{name: "missing type", data: `{"content":{}}`, wantErr: true},
		{name: "not json", data: `hello`, wantErr: true},
		{name: "json but not object", data: `[1,2,3]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeInbound([]byte(tt.data))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, msg.Type)
			if tt.wantContent != "" {
				assert.Equal(t, tt.wantContent, string(msg.Content))
			}
		})
	}
}

func TestEncodeContentUpdate_PreservesContent(t *testing.T) {
	content := Content(`{"objects":[{"type":"rect","left":10.5,"fill":"#ff0000"}],"version":"5.3.0"}`)

	data, err := EncodeContentUpdate(content)
	require.NoError(t, err)

	assert.Equal(t, `{"type":"contentUpdate","content":`+string(content)+`}`, string(data))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("dashboard")
	require.NoError(t, err)
	assert.Equal(t, RoleProducer, role)

	role, err = ParseRole("electron")
	require.NoError(t, err)
	assert.Equal(t, RoleConsumer, role)

	_, err = ParseRole("Dashboard")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestHandshakeError_Unwraps(t *testing.T) {
	err := &HandshakeError{Code: CloseMissingScreenID, Err: ErrMissingScreenID}

	assert.ErrorIs(t, err, ErrMissingScreenID)
	assert.Contains(t, err.Error(), "4002")
}
