package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/notification-service/internal/models"
)

func TestComplaintEventDecoding(t *testing.T) {
	raw := []byte(`{
		"type": "assigned",
		"recipients": [{"kind": "staff", "id": "S1"}, {"id": "u7"}],
		"message": "Complaint C9 was assigned to you"
	}`)
	var ev ComplaintEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "assigned", ev.Type)
	require.Len(t, ev.Recipients, 2)
	assert.Equal(t, models.KindStaff, ev.Recipients[0].Kind)
	assert.Equal(t, "S1", ev.Recipients[0].ID)
	assert.Empty(t, ev.Recipients[1].Kind)
}

func TestKindForEvent(t *testing.T) {
	assert.Equal(t, models.NotifNewComplaint, kindForEvent("created"))
	assert.Equal(t, models.NotifSuccess, kindForEvent("resolved"))
	assert.Equal(t, models.NotifUpdate, kindForEvent("assigned"))
	assert.Equal(t, models.NotifUpdate, kindForEvent("status_changed"))
}
