package history

import (
	"fmt"
	"testing"
)

func TestStoreAppendAndRead(t *testing.T) {
	s := New(10)
	s.Append("dev-1", "user", "xin chào")
	s.Append("dev-1", "assistant", "chào bạn")
	s.Append("dev-2", "user", "hello")

	msgs := s.Messages("dev-1")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("order wrong: %+v", msgs)
	}
	if len(s.Messages("dev-2")) != 1 {
		t.Error("devices share history")
	}
}

func TestStoreBounded(t *testing.T) {
	s := New(3) // 6 entries max
	for i := 0; i < 20; i++ {
		s.Append("dev-1", "user", fmt.Sprintf("msg %d", i))
	}

	msgs := s.Messages("dev-1")
	if len(msgs) != 6 {
		t.Fatalf("got %d entries, want 6", len(msgs))
	}
	if msgs[0].Content != "msg 14" || msgs[5].Content != "msg 19" {
		t.Errorf("wrong window kept: first %q last %q", msgs[0].Content, msgs[5].Content)
	}
}

func TestStoreReturnsCopy(t *testing.T) {
	s := New(10)
	s.Append("dev-1", "user", "original")

	msgs := s.Messages("dev-1")
	msgs[0].Content = "mutated"
	if s.Messages("dev-1")[0].Content != "original" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestStoreClear(t *testing.T) {
	s := New(10)
	s.Append("dev-1", "user", "a")
	s.Append("dev-2", "user", "b")

	s.ClearDevice("dev-1")
	if len(s.Messages("dev-1")) != 0 {
		t.Error("ClearDevice left history")
	}
	if len(s.Messages("dev-2")) != 1 {
		t.Error("ClearDevice touched another device")
	}

	s.Clear()
	if len(s.Messages("dev-2")) != 0 {
		t.Error("Clear left history")
	}
}
