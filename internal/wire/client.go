// Package wire implements the outbound half of the Wire Protocol Client:
// encoding group/synth/node/buffer/plugin messages and timed bundles over
// a datagram connection to the external synthesis process. Grounded on the
// donor's github.com/hypebeast/go-osc calling convention (model.go,
// main.go) and original_source/.../osc_client.rs's exact message shapes
// (spec.md §4.7, §6).
package wire

import (
	"time"

	"github.com/hypebeast/go-osc/osc"
)

// Client sends OSC messages and bundles to the synthesis process over UDP.
type Client struct {
	addr   string
	port   int
	client *osc.Client
}

// NewClient opens a Client targeting host:port. Matches the donor's
// osc.NewClient(host, port) call in model.go.
func NewClient(host string, port int) *Client {
	return &Client{addr: host, port: port, client: osc.NewClient(host, port)}
}

// NewGroup sends /g_new group_id add_action target.
func (c *Client) NewGroup(groupID, addAction, target int32) error {
	msg := osc.NewMessage("/g_new")
	msg.Append(groupID)
	msg.Append(addAction)
	msg.Append(target)
	return c.client.Send(msg)
}

// NewSynthInGroup sends /s_new synthdef node_id addToTail(1) group [name value]*.
func (c *Client) NewSynthInGroup(synthDef string, nodeID, groupID int32, params []Param) error {
	msg := osc.NewMessage("/s_new")
	msg.Append(synthDef)
	msg.Append(nodeID)
	msg.Append(int32(1)) // addToTail
	msg.Append(groupID)
	appendParams(msg, params)
	return c.client.Send(msg)
}

// NewSynthHead sends /s_new synthdef node_id addToHead(0) target [name value]*,
// used for drum one-shots which don't belong to any voice chain (spec.md §4.3).
func (c *Client) NewSynthHead(synthDef string, nodeID, target int32, params []Param) error {
	msg := osc.NewMessage("/s_new")
	msg.Append(synthDef)
	msg.Append(nodeID)
	msg.Append(int32(0)) // addToHead
	msg.Append(target)
	appendParams(msg, params)
	return c.client.Send(msg)
}

// FreeNode sends /n_free node_id.
func (c *Client) FreeNode(nodeID int32) error {
	msg := osc.NewMessage("/n_free")
	msg.Append(nodeID)
	return c.client.Send(msg)
}

// SetParam sends /n_set node_id name value.
func (c *Client) SetParam(nodeID int32, name string, value float32) error {
	msg := osc.NewMessage("/n_set")
	msg.Append(nodeID)
	msg.Append(name)
	msg.Append(value)
	return c.client.Send(msg)
}

// SetParamsBundled sends a single timed bundle containing one /n_set message
// with all params, at the given absolute time.
func (c *Client) SetParamsBundled(nodeID int32, params []Param, at time.Time) error {
	msg := osc.NewMessage("/n_set")
	msg.Append(nodeID)
	appendParams(msg, params)
	bundle := osc.NewBundle(at)
	bundle.Append(msg)
	return c.client.Send(bundle)
}

// SendBundle sends an arbitrary set of pre-built messages as one timed
// bundle, used by the voice manager to send group+synth creation atomically
// (spec.md §4.3 "Construct a single timed bundle").
func (c *Client) SendBundle(messages []*osc.Message, at time.Time) error {
	bundle := osc.NewBundle(at)
	for _, m := range messages {
		bundle.Append(m)
	}
	return c.client.Send(bundle)
}

// LoadBuffer sends /b_allocRead buf path 0 0 (read the entire file).
func (c *Client) LoadBuffer(bufnum int32, path string) error {
	msg := osc.NewMessage("/b_allocRead")
	msg.Append(bufnum)
	msg.Append(path)
	msg.Append(int32(0))
	msg.Append(int32(0))
	return c.client.Send(msg)
}

// AllocBuffer sends /b_alloc buf numFrames numChannels.
func (c *Client) AllocBuffer(bufnum, numFrames, numChannels int32) error {
	msg := osc.NewMessage("/b_alloc")
	msg.Append(bufnum)
	msg.Append(numFrames)
	msg.Append(numChannels)
	return c.client.Send(msg)
}

// FreeBuffer sends /b_free buf.
func (c *Client) FreeBuffer(bufnum int32) error {
	msg := osc.NewMessage("/b_free")
	msg.Append(bufnum)
	return c.client.Send(msg)
}

// OpenBufferForWrite sends /b_write buf path wav float 0 0 1 (leave open).
func (c *Client) OpenBufferForWrite(bufnum int32, path string) error {
	msg := osc.NewMessage("/b_write")
	msg.Append(bufnum)
	msg.Append(path)
	msg.Append("wav")
	msg.Append("float")
	msg.Append(int32(0))
	msg.Append(int32(0))
	msg.Append(int32(1))
	return c.client.Send(msg)
}

// CloseBuffer sends /b_close buf.
func (c *Client) CloseBuffer(bufnum int32) error {
	msg := osc.NewMessage("/b_close")
	msg.Append(bufnum)
	return c.client.Send(msg)
}

// QueryBuffer sends /b_query buf; results arrive asynchronously via /b_info.
func (c *Client) QueryBuffer(bufnum int32) error {
	msg := osc.NewMessage("/b_query")
	msg.Append(bufnum)
	return c.client.Send(msg)
}

// SendUnitCmd sends /u_cmd node ugenIndex cmd [args...], used for plugin
// unit commands like /open, /midi_msg, /set (spec.md §6).
func (c *Client) SendUnitCmd(nodeID, ugenIndex int32, cmd string, args ...interface{}) error {
	msg := osc.NewMessage("/u_cmd")
	msg.Append(nodeID)
	msg.Append(ugenIndex)
	msg.Append(cmd)
	for _, a := range args {
		msg.Append(a)
	}
	return c.client.Send(msg)
}

// RecvBlob sends /d_recv blob, uploading a compiled synth definition.
func (c *Client) RecvBlob(blob []byte) error {
	msg := osc.NewMessage("/d_recv")
	msg.Append(blob)
	return c.client.Send(msg)
}

// Param is one (name, value) pair appended to a /s_new or /n_set message.
type Param struct {
	Name  string
	Value float32
}

func appendParams(msg *osc.Message, params []Param) {
	for _, p := range params {
		msg.Append(p.Name)
		msg.Append(p.Value)
	}
}
