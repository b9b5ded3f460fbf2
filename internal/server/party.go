package server

import "sync"

// ClientParty is the server's map of client id to Client, per spec.md
// §4.10. Every method takes a snapshot under the lock and operates on
// copies/slices outside it, so a slow client callback (e.g. Send) never
// holds up a concurrent Add/Remove from another connection's goroutine.
type ClientParty struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func newClientParty() *ClientParty {
	return &ClientParty{clients: make(map[string]*Client)}
}

// Add registers a newly accepted client.
func (p *ClientParty) Add(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[c.ID] = c
}

// Remove drops a client, e.g. on disconnect.
func (p *ClientParty) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, id)
}

// Get resolves a client by id.
func (p *ClientParty) Get(id string) (*Client, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.clients[id]
	return c, ok
}

// All returns a stable snapshot of every currently connected client.
func (p *ClientParty) All() []*Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Client, 0, len(p.clients))
	for _, c := range p.clients {
		out = append(out, c)
	}
	return out
}

// Len reports the number of connected clients.
func (p *ClientParty) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}
