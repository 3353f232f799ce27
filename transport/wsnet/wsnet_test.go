package wsnet_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/branchbound/parsearch/transport/wsnet"
)

// freeAddr grabs an ephemeral port by briefly listening on it, then
// releases it for ListenHub to bind moments later.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestWsnetStarTopologyConnectsAllRanks(t *testing.T) {
	const size = 3
	addr := freeAddr(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	hubCh := make(chan *wsnet.Transport, 1)
	hubErrCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub, err := wsnet.ListenHub(ctx, addr, size)
		hubCh <- hub
		hubErrCh <- err
	}()

	// give the listener a moment to bind before workers dial in.
	time.Sleep(50 * time.Millisecond)

	workers := make([]*wsnet.Transport, size)
	var workerWG sync.WaitGroup
	workerErrs := make([]error, size)
	for rank := 1; rank < size; rank++ {
		rank := rank
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			w, err := wsnet.DialWorker(ctx, addr, rank, size)
			workers[rank] = w
			workerErrs[rank] = err
		}()
	}
	workerWG.Wait()
	for rank := 1; rank < size; rank++ {
		if workerErrs[rank] != nil {
			t.Fatalf("DialWorker(rank %d): %v", rank, workerErrs[rank])
		}
	}

	wg.Wait()
	if err := <-hubErrCh; err != nil {
		t.Fatalf("ListenHub: %v", err)
	}
	hub := <-hubCh

	if hub.Rank() != 0 || hub.Size() != size {
		t.Fatalf("hub Rank/Size = %d/%d, want 0/%d", hub.Rank(), hub.Size(), size)
	}

	// hub -> worker 1 direct send.
	if err := hub.Send(ctx, 1, 9, []byte("ping")); err != nil {
		t.Fatalf("hub.Send: %v", err)
	}
	msg, err := workers[1].Recv(ctx)
	if err != nil {
		t.Fatalf("worker1.Recv: %v", err)
	}
	if msg.From != 0 || msg.Tag != 9 || string(msg.Payload) != "ping" {
		t.Fatalf("worker1 got %+v, want From=0 Tag=9 Payload=ping", msg)
	}

	// worker -> worker relayed through the hub.
	if err := workers[1].Send(ctx, 2, 3, []byte("donate")); err != nil {
		t.Fatalf("worker1.Send: %v", err)
	}
	msg, err = workers[2].Recv(ctx)
	if err != nil {
		t.Fatalf("worker2.Recv: %v", err)
	}
	if msg.From != 1 || msg.Tag != 3 || string(msg.Payload) != "donate" {
		t.Fatalf("worker2 got %+v, want From=1 Tag=3 Payload=donate", msg)
	}

	// hub broadcast reaches every worker.
	if err := hub.Broadcast(ctx, 4, []byte("model")); err != nil {
		t.Fatalf("hub.Broadcast: %v", err)
	}
	for rank := 1; rank < size; rank++ {
		msg, err := workers[rank].Recv(ctx)
		if err != nil {
			t.Fatalf("worker%d.Recv broadcast: %v", rank, err)
		}
		if msg.Tag != 4 || string(msg.Payload) != "model" {
			t.Fatalf("worker%d broadcast got %+v", rank, msg)
		}
	}
}
