package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub(2)
	ch, cancel := hub.Subscribe("app-1")
	other, cancelOther := hub.Subscribe("app-2")
	defer cancelOther()

	hub.Publish("app-1", DataChangeEvent{CollectionName: "applications", Operation: OpUpdate})

	select {
	case e := <-ch:
		assert.Equal(t, OpUpdate, e.Operation)
	case <-time.After(time.Second):
		t.Fatal("không nhận được sự kiện")
	}
	assert.Len(t, other, 0)

	// Buffer đầy thì Publish không block
	hub.Publish("app-1", DataChangeEvent{})
	hub.Publish("app-1", DataChangeEvent{})
	hub.Publish("app-1", DataChangeEvent{})

	cancel()
	cancel()
	assert.Equal(t, 0, hub.SubscriberCount("app-1"))
	assert.Equal(t, 1, hub.SubscriberCount("app-2"))
}

type docWithApp struct {
	ApplicationID string
	Count         int
}

func TestStringField(t *testing.T) {
	assert.Equal(t, "a1", StringField(docWithApp{ApplicationID: "a1"}, "ApplicationID"))
	assert.Equal(t, "a1", StringField(&docWithApp{ApplicationID: "a1"}, "ApplicationID"))
	assert.Equal(t, "", StringField(docWithApp{}, "Missing"))
	assert.Equal(t, "", StringField(docWithApp{Count: 1}, "Count"))
	assert.Equal(t, "", StringField(nil, "ApplicationID"))
}

func TestEmitDataChanged(t *testing.T) {
	got := make(chan DataChangeEvent, 1)
	OnDataChanged(func(_ context.Context, e DataChangeEvent) {
		if e.CollectionName == "emit_test" {
			got <- e
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	EmitDataChanged(ctx, DataChangeEvent{CollectionName: "emit_test", Operation: OpInsert})

	select {
	case e := <-got:
		require.Equal(t, OpInsert, e.Operation)
	case <-time.After(time.Second):
		t.Fatal("handler không được gọi")
	}
}

type memberDoc struct {
	ID            string
	ApplicationID string
}

func TestHub_Forward(t *testing.T) {
	hub := NewHub(4)
	ch, cancel := hub.Subscribe("a1")
	defer cancel()

	forward := hub.Forward(map[string]string{
		"applications":        "ID",
		"application_members": "ApplicationID",
	})
	forward(context.Background(), DataChangeEvent{CollectionName: "application_members", Operation: OpInsert, Document: memberDoc{ID: "m1", ApplicationID: "a1"}})
	forward(context.Background(), DataChangeEvent{CollectionName: "applications", Operation: OpUpdate, Document: &memberDoc{ID: "a1"}})
	forward(context.Background(), DataChangeEvent{CollectionName: "users", Operation: OpUpdate, Document: memberDoc{ID: "a1"}})

	require.Len(t, ch, 2)
	first := <-ch
	assert.Equal(t, "application_members", first.CollectionName)
	second := <-ch
	assert.Equal(t, OpUpdate, second.Operation)
}
