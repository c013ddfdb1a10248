package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации просмотрщика.
// Поля, отсутствующие в файле, остаются значениями Default().
type Config struct {
	World     WorldConfig     `yaml:"world"`
	View      ViewConfig      `yaml:"view"`
	Camera3D  Camera3DConfig  `yaml:"camera3d"`
	Camera4D  Camera4DConfig  `yaml:"camera4d"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Server    ServerConfig    `yaml:"server"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Loop      LoopConfig      `yaml:"loop"`
	Log       LogConfig       `yaml:"log"`
}

type WorldConfig struct {
	Size        int     `yaml:"size"`
	Seed        int64   `yaml:"seed"`
	NoiseScale  float64 `yaml:"noise_scale"`
	HeightScale float64 `yaml:"height_scale"`
	Single      bool    `yaml:"single"` // один воксель вместо рельефа
}

type ViewConfig struct {
	Size       int `yaml:"size"`        // сторона 3D среза
	WindowSize int `yaml:"window_size"` // сторона окна физики
}

type Camera3DConfig struct {
	FOV         float64 `yaml:"fov"`
	Sensitivity float64 `yaml:"sensitivity"`
	Speed       float64 `yaml:"speed"`
	PitchMargin float64 `yaml:"pitch_margin"`
}

type Camera4DConfig struct {
	RotateMillis int `yaml:"rotate_ms"`
}

type PhysicsConfig struct {
	Enabled              bool       `yaml:"enabled"`
	AirFriction          float64    `yaml:"air_friction"`
	MovementAcceleration float64    `yaml:"movement_acceleration"`
	JumpVelocity         float64    `yaml:"jump_velocity"`
	Gravity              float64    `yaml:"gravity"`
	Size                 [3]float64 `yaml:"size"`
	Spawn                [3]float64 `yaml:"spawn"`
	ReadbackLatency      int        `yaml:"readback_latency"`
}

type ServerConfig struct {
	BridgePort  int `yaml:"bridge_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoopConfig struct {
	TickHz int `yaml:"tick_hz"`
}

type LogConfig struct {
	Console string `yaml:"console"`
	File    string `yaml:"file"`
	// Components переопределяет уровни отдельных компонентов (viewer, bridge, physics);
	// пустое поле наследует общий уровень
	Components map[string]LogLevelConfig `yaml:"components"`
}

type LogLevelConfig struct {
	Console string `yaml:"console"`
	File    string `yaml:"file"`
}

// LevelsFor уровни компонента: переопределение поверх общих
func (c LogConfig) LevelsFor(component string) LogLevelConfig {
	out := LogLevelConfig{Console: c.Console, File: c.File}
	if o, ok := c.Components[component]; ok {
		if o.Console != "" {
			out.Console = o.Console
		}
		if o.File != "" {
			out.File = o.File
		}
	}
	return out
}

// Default конфигурация без файла
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Size:        32,
			Seed:        1,
			NoiseScale:  0.08,
			HeightScale: 0.5,
		},
		View: ViewConfig{
			Size:       32,
			WindowSize: 16,
		},
		Camera3D: Camera3DConfig{
			FOV:         1.8,
			Sensitivity: 1,
			Speed:       8,
			PitchMargin: 0.01,
		},
		Camera4D: Camera4DConfig{RotateMillis: 500},
		Physics: PhysicsConfig{
			AirFriction:          0.5,
			MovementAcceleration: 20,
			JumpVelocity:         6,
			Gravity:              9.8,
			Size:                 [3]float64{0.3, 0.3, 0.9},
			Spawn:                [3]float64{16, 16, 28},
			ReadbackLatency:      1,
		},
		EventBus: EventBusConfig{
			Stream:    "VOXEL4D",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{ServiceName: "voxel4d"},
		Loop:      LoopConfig{TickHz: 60},
		Log: LogConfig{
			Console: "info",
			File:    "debug",
			Components: map[string]LogLevelConfig{
				"physics": {Console: "warn"},
			},
		},
	}
}

// GetBridgePort возвращает порт websocket моста с поддержкой fallback значений
func (s *ServerConfig) GetBridgePort() int {
	return getPortWithEnvFallback(s.BridgePort, "VOXEL4D_BRIDGE_PORT", 8090)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "VOXEL4D_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Validate проверяет согласованность размеров
func (c *Config) Validate() error {
	if c.World.Size <= 0 {
		return fmt.Errorf("world.size должен быть > 0, получено %d", c.World.Size)
	}
	if c.View.Size <= 0 || c.View.Size > c.World.Size {
		return fmt.Errorf("view.size должен быть в (0, %d], получено %d", c.World.Size, c.View.Size)
	}
	if c.View.WindowSize <= 0 || c.View.WindowSize > c.View.Size {
		return fmt.Errorf("view.window_size должен быть в (0, %d], получено %d", c.View.Size, c.View.WindowSize)
	}
	if c.Loop.TickHz <= 0 {
		return fmt.Errorf("loop.tick_hz должен быть > 0, получено %d", c.Loop.TickHz)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх Default().
// Если path == "", берёт путь из ENV VOXEL4D_CONFIG; без пути возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL4D_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
