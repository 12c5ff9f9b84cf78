package rpc

import (
	"fmt"
	"net/rpc"
	"strconv"
	"time"

	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

type Client struct {
	client *rpc.Client
}

func NewClient(port int) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := range maxretries {
		client, err = rpc.DialHTTP("tcp", "localhost:"+strconv.Itoa(port))
		if err == nil {
			break
		}
		log.ModRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	if err != nil {
		return nil, fmt.Errorf("dial failed max retries: %v", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	log.ModRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) Read8(addr uint16) (uint8, error) {
	return request[uint8](c.client, "bus.Read8", addr)
}
func (c *Client) Peek8(addr uint16) (uint8, error) {
	return request[uint8](c.client, "bus.Peek8", addr)
}
func (c *Client) IrqPending() (bool, error)  { return request[bool](c.client, "bus.IrqPending", nil) }
func (c *Client) SaveState() ([]byte, error) { return request[[]byte](c.client, "bus.SaveState", nil) }

func (c *Client) Write8(addr uint16, val uint8) error {
	return call(c.client, "bus.Write8", WriteArgs{Addr: addr, Val: val})
}

func (c *Client) Step(n int) error { return call(c.client, "bus.Step", n) }

func (c *Client) LoadState(buf []byte) error { return call(c.client, "bus.LoadState", buf) }

func (c *Client) SetIrqSource(src hwdefs.CdIrq) error {
	return call(c.client, "bus.SetIrqSource", src)
}

func (c *Client) ClearIrqSource(src hwdefs.CdIrq) error {
	return call(c.client, "bus.ClearIrqSource", src)
}

func call(client *rpc.Client, funcname string, args any) error {
	_, err := request[struct{}](client, funcname, args)
	return err
}

func request[T any](client *rpc.Client, funcname string, args any) (T, error) {
	if args == nil {
		args = struct{}{}
	}
	var reply T
	if err := client.Call(funcname, args, &reply); err != nil {
		log.ModRPC.WarnZ("RPC call failed").String("func", funcname).Error("err", err).End()
		return reply, fmt.Errorf("%s: %w", funcname, err)
	}
	return reply, nil
}
