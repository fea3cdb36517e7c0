package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Config is the persisted state of the command line client: the thread
// each endpoint is currently addressed at, so follow-up invocations
// continue the same conversation. It never holds the bearer credential.
type Config struct {
	// Current conversation thread per endpoint
	Threads map[string]string `json:"threads,omitempty"`

	// Path to the config file
	path string
	mu   sync.Mutex
}

//////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// The name of the config file
	configFile = "config.json"

	// Credential file written by early releases, removed on logout
	legacyCredentialFile = "token.json"
)

//////////////////////////////////////////////////////////////////
// LIFECYCLE

// Create a new config object with the given name
func NewConfig(name string) (*Config, error) {
	// Load the config from the file, or return a new empty config
	path, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}

	// Append the name of the application to the path
	if name != "" {
		path = filepath.Join(path, name)
	}

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	// The config to return
	var config Config
	config.path = filepath.Join(path, configFile)

	// Load the config from the file, ignore any errors
	_ = config.Load()

	// Return success
	return &config, nil
}

// Release resources
func (c *Config) Close() error {
	return c.Save()
}

//////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ThreadFor returns the thread an endpoint is currently addressed at.
func (c *Config) ThreadFor(endpoint string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Threads[endpoint]
}

// SetThreadFor addresses an endpoint at a thread. An empty thread
// removes the binding.
func (c *Config) SetThreadFor(endpoint, thread string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if thread == "" {
		delete(c.Threads, endpoint)
		return
	}
	if c.Threads == nil {
		c.Threads = make(map[string]string)
	}
	c.Threads[endpoint] = thread
}

// PurgeCredential removes the credential file written by early
// releases. The current client keeps the bearer credential in memory
// only.
func (c *Config) PurgeCredential() {
	_ = os.Remove(filepath.Join(filepath.Dir(c.path), legacyCredentialFile))
}

//////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// Load config as JSON
func (c *Config) Load() error {
	// Open the file
	file, err := os.Open(c.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	// Decode the JSON
	if err := json.NewDecoder(file).Decode(c); err != nil {
		return err
	}

	// Return success
	return nil
}

// Save config as JSON
func (c *Config) Save() error {
	// Open the file
	file, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Encode the JSON
	return json.NewEncoder(file).Encode(c)
}
