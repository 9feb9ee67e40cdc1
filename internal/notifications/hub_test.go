package notifications

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(bufferSize int) *Hub {
	return NewHub(bufferSize, slog.Default())
}

func makeEvent(orderID int64, status string) Event {
	return Event{OrderID: orderID, Status: status, Timestamp: time.Now().UTC()}
}

func Test_Hub_Subscribe_DeliversPublishedEvents(t *testing.T) {
	// Arrange
	hub := newTestHub(4)
	ch, err := hub.Subscribe("conn-1", GroupAll)
	require.NoError(t, err)

	// Act
	delivered := hub.Publish(GroupAll, makeEvent(7, "preparing"))

	// Assert
	assert.Equal(t, 1, delivered)
	event := <-ch
	assert.Equal(t, int64(7), event.OrderID)
	assert.Equal(t, "preparing", event.Status)
}

func Test_Hub_Subscribe_EmptyParamsAreRejected(t *testing.T) {
	hub := newTestHub(4)

	_, err := hub.Subscribe("", GroupAll)
	assert.Error(t, err)

	_, err = hub.Subscribe("conn-1", "")
	assert.Error(t, err)
}

func Test_Hub_Subscribe_SameConnectionSharesOneChannel(t *testing.T) {
	// Arrange
	hub := newTestHub(4)
	chAll, err := hub.Subscribe("conn-1", GroupAll)
	require.NoError(t, err)
	chOrder, err := hub.Subscribe("conn-1", OrderGroup(7))
	require.NoError(t, err)

	// Assert: both subscriptions feed the same channel
	hub.Publish(OrderGroup(7), makeEvent(7, "delivering"))
	event := <-chAll
	assert.Equal(t, "delivering", event.Status)
	assert.Equal(t, chAll, chOrder)
}

func Test_Hub_Publish_OnlyReachesGroupMembers(t *testing.T) {
	// Arrange
	hub := newTestHub(4)
	chAdmin, err := hub.Subscribe("admin-conn", GroupAdmin)
	require.NoError(t, err)
	chOther, err := hub.Subscribe("other-conn", OrderGroup(9))
	require.NoError(t, err)

	// Act
	delivered := hub.Publish(GroupAdmin, makeEvent(7, "completed"))

	// Assert
	assert.Equal(t, 1, delivered)
	assert.Len(t, chAdmin, 1)
	assert.Len(t, chOther, 0)
}

func Test_Hub_Publish_DropsWhenSubscriberBufferIsFull(t *testing.T) {
	// Arrange
	hub := newTestHub(2)
	ch, err := hub.Subscribe("slow-conn", GroupAll)
	require.NoError(t, err)

	// Act: third publish overflows the buffer and must not block
	done := make(chan struct{})
	go func() {
		hub.Publish(GroupAll, makeEvent(1, "pending"))
		hub.Publish(GroupAll, makeEvent(1, "preparing"))
		hub.Publish(GroupAll, makeEvent(1, "delivering"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	// Assert: the buffered events survive in publish order, overflow is lost
	first := <-ch
	second := <-ch
	assert.Equal(t, "pending", first.Status)
	assert.Equal(t, "preparing", second.Status)
	assert.Len(t, ch, 0)
}

func Test_Hub_Publish_PreservesOrderPerSubscriber(t *testing.T) {
	// Arrange
	hub := newTestHub(8)
	ch, err := hub.Subscribe("conn-1", OrderGroup(5))
	require.NoError(t, err)

	statuses := []string{"pending", "preparing", "delivering", "completed"}

	// Act
	for _, status := range statuses {
		hub.Publish(OrderGroup(5), makeEvent(5, status))
	}

	// Assert
	for _, status := range statuses {
		event := <-ch
		assert.Equal(t, status, event.Status)
	}
}

func Test_Hub_Unsubscribe_StopsDeliveryForThatGroupOnly(t *testing.T) {
	// Arrange
	hub := newTestHub(4)
	ch, err := hub.Subscribe("conn-1", GroupAll)
	require.NoError(t, err)
	_, err = hub.Subscribe("conn-1", OrderGroup(3))
	require.NoError(t, err)

	// Act
	hub.Unsubscribe("conn-1", GroupAll)
	hub.Publish(GroupAll, makeEvent(3, "preparing"))
	hub.Publish(OrderGroup(3), makeEvent(3, "delivering"))

	// Assert
	event := <-ch
	assert.Equal(t, "delivering", event.Status)
	assert.Len(t, ch, 0)
	assert.Equal(t, 0, hub.SubscriberCount(GroupAll))
}

func Test_Hub_Disconnect_RemovesAllGroupsAndClosesChannel(t *testing.T) {
	// Arrange
	hub := newTestHub(4)
	ch, err := hub.Subscribe("conn-1", GroupAll)
	require.NoError(t, err)
	_, err = hub.Subscribe("conn-1", GroupAdmin)
	require.NoError(t, err)

	// Act
	hub.Disconnect("conn-1")

	// Assert
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount(GroupAll))
	assert.Equal(t, 0, hub.SubscriberCount(GroupAdmin))

	// Repeated or unknown disconnects are no-ops
	hub.Disconnect("conn-1")
	hub.Disconnect("never-seen")
}

func Test_Hub_Broadcast_ReachesAllAdminAndOrderGroups(t *testing.T) {
	// Arrange
	hub := newTestHub(4)
	chAll, err := hub.Subscribe("all-conn", GroupAll)
	require.NoError(t, err)
	chAdmin, err := hub.Subscribe("admin-conn", GroupAdmin)
	require.NoError(t, err)
	chOrder, err := hub.Subscribe("order-conn", OrderGroup(11))
	require.NoError(t, err)
	chOther, err := hub.Subscribe("other-conn", OrderGroup(12))
	require.NoError(t, err)

	// Act
	hub.Broadcast(makeEvent(11, "completed"))

	// Assert
	assert.Len(t, chAll, 1)
	assert.Len(t, chAdmin, 1)
	assert.Len(t, chOrder, 1)
	assert.Len(t, chOther, 0)
}

func Test_OrderGroup_Format(t *testing.T) {
	assert.Equal(t, "order:42", OrderGroup(42))
}
