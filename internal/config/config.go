package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"malldash/internal/parser"
)

const configFile = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig        `toml:"server"`
	Data    DataConfig          `toml:"data"`
	Import  ImportConfig        `toml:"import"`
	Headers map[string][]string `toml:"headers"` // 字段角色 -> 额外表头别名
	Log     LogConfig           `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	DBFile  string `toml:"db_file"`
}

// ImportConfig 导入配置
type ImportConfig struct {
	MaxUploadMB  int    `toml:"max_upload_mb"`
	DefaultSheet string `toml:"default_sheet"`
	CSVEncoding  string `toml:"csv_encoding"` // auto / utf-8 / euc-kr
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string // 实际读取的配置文件，未找到时为空
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			DevMode:     false,
			OpenBrowser: true,
		},
		Data: DataConfig{
			DataDir: "data",
			DBFile:  "malldash.db",
		},
		Import: ImportConfig{
			MaxUploadMB: 20,
			CSVEncoding: "auto",
		},
		Headers: map[string][]string{},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// searchPaths 配置文件查找顺序：可执行文件目录，然后当前目录
func searchPaths() []string {
	var paths []string
	if exeDir, err := GetExeDir(); err == nil {
		paths = append(paths, filepath.Join(exeDir, configFile))
	}
	return append(paths, configFile)
}

// LoadConfigWithInfo 加载 .env 与 config.toml，随后应用环境变量覆盖
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadConfigFrom(p)
		}
	}

	config := DefaultConfig()
	if err := applyEnv(config, &LoadConfigInfo{}); err != nil {
		return nil, LoadConfigInfo{}, err
	}
	return config, LoadConfigInfo{}, nil
}

// LoadConfigFrom 从指定文件加载配置；文件不存在时使用默认值
func LoadConfigFrom(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, info, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		info.Path = path
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := strings.TrimSpace(os.Getenv("MALLDASH_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MALLDASH_PORT %q: %w", v, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv("MALLDASH_DATA_DIR")); v != "" {
		config.Data.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("MALLDASH_LOG_LEVEL")); v != "" {
		config.Log.Level = v
	}
	return nil
}

// SaveConfig 保存配置到 path；path 为空时写入可执行文件目录下的 config.toml
// 返回实际写入的路径
func SaveConfig(config *AppConfig, path string) (string, error) {
	if path == "" {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		path = filepath.Join(exeDir, configFile)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// HeaderTable 内置表头候选加上配置中的别名
func (c *AppConfig) HeaderTable() parser.HeaderTable {
	table := parser.DefaultHeaderTable()
	if len(c.Headers) == 0 {
		return table
	}

	aliases := make(map[parser.FieldRole][]string)
	for key, values := range c.Headers {
		for _, rule := range table {
			if strings.EqualFold(key, string(rule.Role)) {
				aliases[rule.Role] = append(aliases[rule.Role], values...)
			}
		}
	}
	return table.WithAliases(aliases)
}

// MaxUploadBytes 上传大小上限
func (c *AppConfig) MaxUploadBytes() int64 {
	mb := c.Import.MaxUploadMB
	if mb <= 0 {
		mb = 20
	}
	return int64(mb) << 20
}

// ResolveDataDir 数据目录绝对路径；相对路径以可执行文件目录为基准
func ResolveDataDir(config *AppConfig) string {
	dir := config.Data.DataDir
	if filepath.IsAbs(dir) {
		return dir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, dir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Join(dataDir, "exports"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// DBPath 数据库文件路径
func DBPath(config *AppConfig) string {
	name := config.Data.DBFile
	if name == "" {
		name = "malldash.db"
	}
	return filepath.Join(ResolveDataDir(config), name)
}
