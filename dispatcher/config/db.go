package config

import (
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/kvdb"
)

const (
	defaultDBName = "lander.db"
)

// DBConfig holds the bbolt database configuration.
type DBConfig struct {
	// DBPath is the directory path in which the database file is stored.
	DBPath string `long:"dbpath" description:"The directory path in which the database file should be stored."`

	// DBFileName is the name of the database file.
	DBFileName string `long:"dbfilename" description:"The name of the database file."`

	// NoFreelistSync, if true, prevents the database from syncing its
	// freelist to disk, improving performance at the expense of increased
	// startup time.
	NoFreelistSync bool `long:"nofreelistsync" description:"Whether the databases should sync their freelist to disk."`

	// AutoCompact specifies if a Bolt based database backend should be
	// automatically compacted on startup (if the minimum age of the
	// database file is reached).
	AutoCompact bool `long:"autocompact" description:"Whether the databases used within lander should automatically be compacted on startup."`

	// AutoCompactMinAge specifies the minimum time that must have passed
	// since a bolt database file was last compacted for the compaction to
	// be considered again.
	AutoCompactMinAge time.Duration `long:"autocompactminage" description:"How long ago (in hours) the database file must be created before considering it for auto compaction."`

	// DBTimeout specifies the timeout value to use when opening the bbolt
	// database.
	DBTimeout time.Duration `long:"dbtimeout" description:"Specify the timeout value used when opening the database."`
}

// DefaultDBConfig returns the default database configuration rooted at
// DefaultHomeDir.
func DefaultDBConfig() *DBConfig {
	return DefaultDBConfigWithHomePath(DefaultHomeDir)
}

// DefaultDBConfigWithHomePath returns the default database configuration with
// the data directory under the given home path.
func DefaultDBConfigWithHomePath(homePath string) *DBConfig {
	return &DBConfig{
		DBPath:            DataDir(homePath),
		DBFileName:        defaultDBName,
		NoFreelistSync:    true,
		AutoCompact:       false,
		AutoCompactMinAge: kvdb.DefaultBoltAutoCompactMinAge,
		DBTimeout:         kvdb.DefaultDBTimeout,
	}
}

// GetDBBackend opens (creating if needed) the bbolt backend described by the
// config.
func (db *DBConfig) GetDBBackend() (kvdb.Backend, error) {
	if db == nil {
		return nil, fmt.Errorf("db config cannot be nil")
	}

	return kvdb.GetBoltBackend(&kvdb.BoltBackendConfig{
		DBPath:            db.DBPath,
		DBFileName:        db.DBFileName,
		NoFreelistSync:    db.NoFreelistSync,
		AutoCompact:       db.AutoCompact,
		AutoCompactMinAge: db.AutoCompactMinAge,
		DBTimeout:         db.DBTimeout,
	})
}
