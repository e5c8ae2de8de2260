package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOrdering(t *testing.T) {
	assert.True(t, StatusApplied < StatusReviewed)
	assert.True(t, StatusReviewed < StatusInvited)
	assert.True(t, StatusInvited < StatusConfirmed)
	assert.True(t, StatusConfirmed < StatusAdmitted)
}

func TestParseStatus(t *testing.T) {
	for s, name := range statusNames {
		parsed, err := ParseStatus(name)
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStatus("pending")
	assert.Error(t, err)

	assert.False(t, Status(0).Valid())
	assert.False(t, Status(99).Valid())
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(StatusInvited)
	assert.NoError(t, err)
	assert.Equal(t, `"invited"`, string(b))

	var s Status
	assert.NoError(t, json.Unmarshal([]byte(`"cancelled"`), &s))
	assert.Equal(t, StatusCancelled, s)

	assert.Error(t, json.Unmarshal([]byte(`7`), &s))
	assert.Error(t, json.Unmarshal([]byte(`"unknown"`), &s))
}
