package transport

import (
	"sync"

	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

// Pool keeps one open HostClient per host name for the life of a command or TUI session.
type Pool struct {
	clients map[string]contract.HostClient
	mu      sync.RWMutex
	dial    Dialer
	secrets map[string]string
}

func NewPool(secrets map[string]string) *Pool {
	return NewPoolWithDialer(Connect, secrets)
}

func NewPoolWithDialer(dial Dialer, secrets map[string]string) *Pool {
	return &Pool{
		clients: make(map[string]contract.HostClient),
		dial:    dial,
		secrets: secrets,
	}
}

func (p *Pool) Get(host *entity.Host) (contract.HostClient, error) {
	p.mu.RLock()
	if client, ok := p.clients[host.Name]; ok {
		p.mu.RUnlock()
		return client, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[host.Name]; ok {
		return client, nil
	}

	client, err := p.dial(host, p.secrets)
	if err != nil {
		return nil, err
	}
	p.clients[host.Name] = client
	return client, nil
}

func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, client := range p.clients {
		client.Close()
	}
	p.clients = make(map[string]contract.HostClient)
}

func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}
