package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_DecodesAdminFlag(t *testing.T) {
	var resp AuthResponse
	err := json.Unmarshal([]byte(`{"token":"tok123","user":{"id":1,"username":"alice","adm_bool":true}}`), &resp)
	require.NoError(t, err)

	require.NotNil(t, resp.User)
	assert.Equal(t, "tok123", resp.Token)
	assert.Equal(t, Identity{ID: 1, Username: "alice", IsAdmin: true}, *resp.User)
}

func TestMeResponse_MissingUserIsNil(t *testing.T) {
	var resp MeResponse
	require.NoError(t, json.Unmarshal([]byte(`{}`), &resp))
	assert.Nil(t, resp.User)
}

func TestCallRecord_Helpers(t *testing.T) {
	c := CallRecord{PhoneNumber: "+5511999990000", DurationSeconds: 95}
	assert.Equal(t, 95*time.Second, c.Duration())
	assert.Equal(t, "+5511999990000", c.Party())

	c.ContactName = "Bob"
	assert.Equal(t, "Bob", c.Party())
}

func TestCallRecord_DecodesOptionalEnd(t *testing.T) {
	var missed CallRecord
	err := json.Unmarshal([]byte(`{"id":7,"phone_number":"100","call_type":"missed","start_time":"2026-10-01T10:00:00Z","duration_seconds":0,"answered":false}`), &missed)
	require.NoError(t, err)
	assert.Equal(t, CallMissed, missed.CallType)
	assert.Nil(t, missed.EndTime)
}
