package rpc

import (
	"io"
	"net"
	"net/http"
	"net/rpc"
	"strconv"

	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

// Bus is the console, as exposed to remote clients.
type Bus interface {
	Read8(addr uint16) uint8
	Peek8(addr uint16) uint8
	Write8(addr uint16, val uint8)
	SetIrqSource(src hwdefs.CdIrq)
	ClearIrqSource(src hwdefs.CdIrq)
	IrqPending() bool
	Step(n int)
	SaveState() []byte
	LoadState(buf []byte) error
}

type busProxy struct {
	bus Bus
}

func (bp *busProxy) Read8(addr uint16, reply *uint8) error { *reply = bp.bus.Read8(addr); return nil }
func (bp *busProxy) Peek8(addr uint16, reply *uint8) error { *reply = bp.bus.Peek8(addr); return nil }
func (bp *busProxy) Write8(args WriteArgs, _ *struct{}) error {
	bp.bus.Write8(args.Addr, args.Val)
	return nil
}
func (bp *busProxy) Step(n int, _ *struct{}) error { bp.bus.Step(n); return nil }
func (bp *busProxy) SaveState(_ struct{}, reply *[]byte) error {
	*reply = bp.bus.SaveState()
	return nil
}
func (bp *busProxy) LoadState(buf []byte, _ *struct{}) error { return bp.bus.LoadState(buf) }

func (bp *busProxy) SetIrqSource(src hwdefs.CdIrq, _ *struct{}) error {
	bp.bus.SetIrqSource(src)
	return nil
}

func (bp *busProxy) ClearIrqSource(src hwdefs.CdIrq, _ *struct{}) error {
	bp.bus.ClearIrqSource(src)
	return nil
}

func (bp *busProxy) IrqPending(_ struct{}, reply *bool) error {
	*reply = bp.bus.IrqPending()
	return nil
}

func (bp *busProxy) IsReady(_ struct{}, reply *bool) error {
	*reply = true
	return nil
}

type Server struct {
	io.Closer
	Port int
}

// NewServer serves bus over HTTP on the given localhost port (0 picks a
// free one).
func NewServer(port int, bus Bus) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("bus", &busProxy{bus: bus}); err != nil {
		panic("failed to register RPC server: " + err.Error())
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)

	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}
	port = l.Addr().(*net.TCPAddr).Port

	log.ModRPC.InfoZ("rpc server listening").Int("port", port).End()
	go http.Serve(l, mux)
	return &Server{Closer: l, Port: port}, nil
}
