package lsp

import "github.com/google/uuid"

// Output carries requests the server sends to the client. Request does not
// wait for an answer; the client's response is dropped by the read loop.
type Output interface {
	Request(method string, params any) (string, error)
}

type streamOutput struct {
	s *Server
}

func (o streamOutput) Request(method string, params any) (string, error) {
	id := uuid.NewString()
	return id, o.s.send(outgoingRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
}
