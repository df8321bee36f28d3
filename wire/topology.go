package wire

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Topology is the parsed overlay adjacency list: each node identifier
// ("host:port") maps to its outbound neighbor set.
type Topology struct {
	neighbors map[string][]string
}

// LoadTopology parses path per §4.7: each non-blank line is "SRC -> D1,
// D2, ...". A missing file, or a self id later looked up that isn't present
// in it, both yield an empty neighbor set rather than an error — topology
// isolation must never abort startup.
func LoadTopology(path string) (*Topology, error) {
	t := &Topology{neighbors: make(map[string][]string)}

	f, err := os.Open(path)
	if err != nil {
		return t, nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "->", 2)
		if len(parts) != 2 {
			continue
		}
		src := strings.TrimSpace(parts[0])
		var neighbors []string
		for _, d := range strings.Split(parts[1], ",") {
			d = strings.TrimSpace(d)
			if d != "" {
				neighbors = append(neighbors, d)
			}
		}
		t.neighbors[src] = neighbors
	}

	return t, scanner.Err()
}

// Neighbors returns selfID's outbound neighbor set, or nil if selfID is
// unknown to the topology.
func (t *Topology) Neighbors(selfID string) []string {
	return t.neighbors[selfID]
}

// ID formats a host/port pair as the "host:port" identifier used throughout
// the wire protocol and the topology file.
func ID(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
