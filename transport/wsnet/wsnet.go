// Package wsnet implements transport.Transport over a star of WebSocket
// connections rooted at the hub: every worker dials in once, and
// rank-to-rank sends (the direct donor-to-receiver transfers
// load-balancing performs) are relayed through the hub rather than
// requiring a full mesh of connections between every pair of workers.
package wsnet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/branchbound/parsearch/transport"
	"github.com/branchbound/parsearch/wire"
)

const frameWireTag = "wsnet.frame"

// broadcastRank marks a frame the hub should fan out to every
// connected worker instead of delivering to one destination.
const broadcastRank = -1

type frame struct {
	From    int
	To      int
	Tag     transport.Tag
	Payload []byte
}

func encodeFrame(f frame) []byte {
	buf := wire.NewBuffer(frameWireTag)
	buf.WriteInt32(int32(f.From))
	buf.WriteInt32(int32(f.To))
	buf.WriteInt32(int32(f.Tag))
	buf.WriteBytes(f.Payload)
	return buf.Bytes()
}

func decodeFrame(data []byte) (frame, error) {
	buf := wire.NewBufferFromBytes(frameWireTag, data)
	from, err := buf.ReadInt32()
	if err != nil {
		return frame{}, err
	}
	to, err := buf.ReadInt32()
	if err != nil {
		return frame{}, err
	}
	tag, err := buf.ReadInt32()
	if err != nil {
		return frame{}, err
	}
	payload, err := buf.ReadBytes()
	if err != nil {
		return frame{}, err
	}
	return frame{From: int(from), To: int(to), Tag: transport.Tag(tag), Payload: payload}, nil
}

// Transport is one rank's WebSocket-backed transport.Transport: the hub
// holds one connection per worker, a worker holds exactly one
// connection to the hub.
type Transport struct {
	rank int
	size int

	writeMu sync.Mutex
	conns   map[int]*websocket.Conn

	inbox chan transport.Message
	errc  chan error
}

func newTransport(rank, size int) *Transport {
	return &Transport{
		rank:  rank,
		size:  size,
		conns: make(map[int]*websocket.Conn),
		inbox: make(chan transport.Message, 256),
		errc:  make(chan error, 1),
	}
}

// ListenHub starts an HTTP server at addr and blocks until all size-1
// workers have dialed in and announced their rank via the "rank" query
// parameter, then returns a Transport bound to rank 0.
func ListenHub(ctx context.Context, addr string, size int) (*Transport, error) {
	t := newTransport(0, size)

	var wg sync.WaitGroup
	wg.Add(size - 1)

	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		rank, err := strconv.Atoi(r.URL.Query().Get("rank"))
		if err != nil || rank <= 0 || rank >= size {
			http.Error(w, "bad rank", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		t.writeMu.Lock()
		t.conns[rank] = conn
		t.writeMu.Unlock()
		go t.readLoop(conn)
		wg.Done()
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return t, nil
	case <-ctx.Done():
		_ = srv.Close()
		return nil, ctx.Err()
	}
}

// DialWorker connects to a hub listening at addr, announcing rank, and
// returns a Transport bound to it.
func DialWorker(ctx context.Context, addr string, rank, size int) (*Transport, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws", RawQuery: fmt.Sprintf("rank=%d", rank)}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("wsnet: dial hub: %w", err)
	}
	t := newTransport(rank, size)
	t.conns[0] = conn
	go t.readLoop(conn)
	return t, nil
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case t.errc <- err:
			default:
			}
			return
		}
		f, err := decodeFrame(data)
		if err != nil {
			continue
		}
		if t.rank == 0 && f.To != 0 {
			t.relay(f)
			continue
		}
		t.inbox <- transport.Message{From: f.From, Tag: f.Tag, Payload: f.Payload}
	}
}

// relay forwards a frame addressed to another rank, or to every rank
// but the sender if it carries the broadcast sentinel. Only ever
// called on the hub's Transport, which alone holds every worker's
// connection.
func (t *Transport) relay(f frame) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if f.To == broadcastRank {
		for rank, conn := range t.conns {
			if rank == f.From {
				continue
			}
			_ = conn.WriteMessage(websocket.BinaryMessage, encodeFrame(f))
		}
		return
	}
	if conn, ok := t.conns[f.To]; ok {
		_ = conn.WriteMessage(websocket.BinaryMessage, encodeFrame(f))
	}
}

func (t *Transport) Send(_ context.Context, to int, tag transport.Tag, payload []byte) error {
	f := frame{From: t.rank, To: to, Tag: tag, Payload: payload}
	data := encodeFrame(f)

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	conn := t.conns[0]
	if t.rank == 0 {
		conn = t.conns[to]
	}
	if conn == nil {
		return fmt.Errorf("wsnet: no connection to rank %d", to)
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

func (t *Transport) Broadcast(_ context.Context, tag transport.Tag, payload []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.rank == 0 {
		for rank, conn := range t.conns {
			f := frame{From: 0, To: rank, Tag: tag, Payload: payload}
			if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(f)); err != nil {
				return err
			}
		}
		return nil
	}

	// Workers never broadcast in this protocol; relay through the hub
	// with the broadcast sentinel so it can fan the message out.
	f := frame{From: t.rank, To: broadcastRank, Tag: tag, Payload: payload}
	return t.conns[0].WriteMessage(websocket.BinaryMessage, encodeFrame(f))
}

func (t *Transport) Recv(ctx context.Context) (transport.Message, error) {
	select {
	case msg := <-t.inbox:
		return msg, nil
	case err := <-t.errc:
		return transport.Message{}, err
	case <-ctx.Done():
		return transport.Message{}, ctx.Err()
	}
}

func (t *Transport) TryRecv() (transport.Message, bool) {
	select {
	case msg := <-t.inbox:
		return msg, true
	default:
		return transport.Message{}, false
	}
}

func (t *Transport) Rank() int { return t.rank }

func (t *Transport) Size() int { return t.size }

var _ transport.Transport = (*Transport)(nil)
