package storage

import (
	"fmt"
	"testing"
)

func exchange(i int) (Message, Message) {
	return Message{Role: RoleUser, Content: fmt.Sprintf("Question %d", i)},
		Message{Role: RoleAssistant, Content: fmt.Sprintf("Answer %d", i)}
}

func TestMemoryStore_AddExchange(t *testing.T) {
	store := NewMemoryStore(20)

	store.AddExchange(exchange(1))

	messages := store.GetMessages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "Question 1" || messages[1].Role != RoleAssistant {
		t.Errorf("Unexpected history: %+v", messages)
	}
}

func TestMemoryStore_TrimToMaxExchanges(t *testing.T) {
	store := NewMemoryStore(2)

	for i := 0; i < 3; i++ {
		store.AddExchange(exchange(i))
	}

	messages := store.GetMessages()
	if len(messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(messages))
	}
	if messages[0].Content != "Question 1" {
		t.Errorf("Expected oldest exchange to be dropped, first message is '%s'", messages[0].Content)
	}
}

func TestMemoryStore_Unbounded(t *testing.T) {
	store := NewMemoryStore(0)

	for i := 0; i < 50; i++ {
		store.AddExchange(exchange(i))
	}

	if got := len(store.GetMessages()); got != 100 {
		t.Errorf("Expected 100 messages, got %d", got)
	}
}

func TestMemoryStore_Concurrency(t *testing.T) {
	store := NewMemoryStore(20)

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(id int) {
			store.AddExchange(exchange(id))
			_ = store.GetMessages()
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	messages := store.GetMessages()
	if len(messages) != 20 {
		t.Errorf("Expected 20 messages, got %d", len(messages))
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(20)

	store.AddExchange(exchange(1))
	store.Clear()

	messages := store.GetMessages()
	if len(messages) != 0 {
		t.Errorf("Expected 0 messages after clear, got %d", len(messages))
	}
}
