package gcnner

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the service configuration for the HTTP inference server
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to
	ListenAddr string
	// ModelPath is the compiled offline model (.om) file
	ModelPath string
	// LabelPath is the class label file
	LabelPath string
	// DeviceIDs are the NPU devices runtimes are spread across
	DeviceIDs []int32
	// PoolSize is the number of runtimes to open
	PoolSize int
	// Nodes is the number of graph nodes per input
	Nodes int
	// Features is the feature vector length per node
	Features int
	// ClassNum is the number of output classes
	ClassNum int
}

// LoadConfig reads configuration from environment variables with sane
// defaults
func LoadConfig() *Config {

	c := &Config{
		ListenAddr: envStr("GCNNER_LISTEN", "127.0.0.1:8080"),
		ModelPath:  envStr("GCNNER_MODEL", "data/gcn_ner.om"),
		LabelPath:  envStr("GCNNER_LABELS", "data/cluener_labels.txt"),
		PoolSize:   envInt("GCNNER_POOL_SIZE", 1),
		Nodes:      envInt("GCNNER_NODES", 128),
		Features:   envInt("GCNNER_FEATURES", 300),
		ClassNum:   envInt("GCNNER_CLASS_NUM", 21),
	}

	// parse device ids: "0,1,..."
	for _, field := range strings.Split(envStr("GCNNER_DEVICE_IDS", "0"), ",") {
		field = strings.TrimSpace(field)

		if field == "" {
			continue
		}

		if id, err := strconv.Atoi(field); err == nil {
			c.DeviceIDs = append(c.DeviceIDs, int32(id))
		}
	}

	if len(c.DeviceIDs) == 0 {
		c.DeviceIDs = []int32{0}
	}

	return c
}

// InitParam converts the service configuration to pipeline parameters for
// the given device
func (c *Config) InitParam(deviceID int32) InitParam {
	return InitParam{
		DeviceID:  deviceID,
		ModelPath: c.ModelPath,
		LabelPath: c.LabelPath,
		ClassNum:  c.ClassNum,
		Nodes:     c.Nodes,
		Features:  c.Features,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
