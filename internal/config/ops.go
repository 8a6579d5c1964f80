package config

import "strings"

func (c Config) FindConnection(ref string) (Connection, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Connection{}, false
	}
	for _, conn := range c.Connections {
		if conn.ID == ref {
			return conn, true
		}
	}
	for _, conn := range c.Connections {
		if strings.EqualFold(conn.Name, ref) {
			return conn, true
		}
	}
	return Connection{}, false
}

// PrependConnection inserts conn at the head; newest entries come first.
func (c *Config) PrependConnection(conn Connection) {
	c.Connections = append([]Connection{conn}, c.Connections...)
}

func (c *Config) ReplaceConnection(conn Connection) bool {
	for i := range c.Connections {
		if c.Connections[i].ID == conn.ID {
			c.Connections[i] = conn
			return true
		}
	}
	return false
}

func (c *Config) RemoveConnection(id string) bool {
	for i := range c.Connections {
		if c.Connections[i].ID != id {
			continue
		}
		c.Connections = append(c.Connections[:i], c.Connections[i+1:]...)
		return true
	}
	return false
}
