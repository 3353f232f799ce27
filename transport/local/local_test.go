package local_test

import (
	"context"
	"testing"
	"time"

	"github.com/branchbound/parsearch/transport/local"
)

func TestSendRecvBetweenRanks(t *testing.T) {
	net := local.NewNetwork(3)
	hub := net.Rank(0)
	worker := net.Rank(1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := hub.Send(ctx, 1, 7, []byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg, err := worker.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if msg.From != 0 || msg.Tag != 7 || string(msg.Payload) != "hello" {
		t.Fatalf("got %+v, want From=0 Tag=7 Payload=hello", msg)
	}
}

func TestTryRecvNonBlocking(t *testing.T) {
	net := local.NewNetwork(2)
	t0 := net.Rank(0)

	if _, ok := t0.TryRecv(); ok {
		t.Fatalf("TryRecv on empty inbox returned ok=true")
	}

	ctx := context.Background()
	if err := net.Rank(1).Send(ctx, 0, 1, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg, ok := t0.TryRecv()
	if !ok {
		t.Fatalf("TryRecv after send returned ok=false")
	}
	if msg.From != 1 {
		t.Fatalf("msg.From = %d, want 1", msg.From)
	}
}

func TestBroadcastReachesEveryOtherRank(t *testing.T) {
	net := local.NewNetwork(3)
	ctx := context.Background()

	if err := net.Rank(0).Broadcast(ctx, 2, []byte("go")); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	for rank := 1; rank < 3; rank++ {
		msg, ok := net.Rank(rank).TryRecv()
		if !ok {
			t.Fatalf("rank %d: expected a broadcast message", rank)
		}
		if msg.From != 0 || msg.Tag != 2 {
			t.Fatalf("rank %d: got %+v", rank, msg)
		}
	}
	if _, ok := net.Rank(0).TryRecv(); ok {
		t.Fatalf("broadcaster should not receive its own broadcast")
	}
}

func TestSendOutOfRangeRankErrors(t *testing.T) {
	net := local.NewNetwork(2)
	if err := net.Rank(0).Send(context.Background(), 5, 0, nil); err == nil {
		t.Fatalf("expected error sending to out-of-range rank")
	}
}

func TestRankAndSize(t *testing.T) {
	net := local.NewNetwork(4)
	r := net.Rank(2)
	if r.Rank() != 2 {
		t.Fatalf("Rank() = %d, want 2", r.Rank())
	}
	if r.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", r.Size())
	}
}
