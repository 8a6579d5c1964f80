package config

import "strings"

// Driver is an Adminer driver name as submitted in auth[driver].
type Driver string

const (
	DriverMySQL         Driver = "server"
	DriverPostgreSQL    Driver = "pgsql"
	DriverSQLite        Driver = "sqlite"
	DriverSQLite2       Driver = "sqlite2"
	DriverOracle        Driver = "oracle"
	DriverMSSQL         Driver = "mssql"
	DriverMongo         Driver = "mongo"
	DriverElasticsearch Driver = "elastic"
)

type DriverKind int

const (
	ServerBased DriverKind = iota
	FileBased
)

func (k DriverKind) String() string {
	if k == FileBased {
		return "file"
	}
	return "server"
}

var knownDrivers = []Driver{
	DriverMySQL,
	DriverPostgreSQL,
	DriverSQLite,
	DriverSQLite2,
	DriverOracle,
	DriverMSSQL,
	DriverMongo,
	DriverElasticsearch,
}

func KnownDrivers() []Driver {
	return append([]Driver(nil), knownDrivers...)
}

func ParseDriver(s string) (Driver, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "mysql", "mariadb":
		return DriverMySQL, true
	case "postgres", "postgresql":
		return DriverPostgreSQL, true
	case "mssql", "sqlserver":
		return DriverMSSQL, true
	}
	for _, d := range knownDrivers {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

func (d Driver) Kind() DriverKind {
	switch d {
	case DriverSQLite, DriverSQLite2:
		return FileBased
	default:
		return ServerBased
	}
}

// Normalized clears the fields the driver kind does not use.
func (c Connection) Normalized() Connection {
	c.Name = strings.TrimSpace(c.Name)
	if c.Driver.Kind() == FileBased {
		c.Hostname = ""
		c.Port = 0
		c.Username = ""
		c.Password = ""
		return c
	}
	c.Hostname = strings.TrimSpace(c.Hostname)
	c.Filepath = ""
	return c
}
