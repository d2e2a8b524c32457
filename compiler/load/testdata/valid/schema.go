package valid

import (
	"errors"
	"time"
)

// CacheConfig exercises every default policy in one declaration.
//
//buildgen:builder
type CacheConfig struct {
	cacheDir    string
	maxEntries  int           `build:"default=10000"`
	compression bool          `build:"default"`
	customName  *string       `build:"optional,getter"`
	ttl         time.Duration //buildgen:field default=time.Hour
}

func (c *CacheConfig) Validate() error {
	if c.cacheDir == "" {
		return errors.New("cache dir is empty")
	}
	return nil
}

// Repository is a stand-in dependency.
type Repository interface {
	Find(id string) (string, error)
}

//buildgen:builder
type UserService struct {
	repository Repository `build:"getter"`
	cache      *CacheConfig
}
