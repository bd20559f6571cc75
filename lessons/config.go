package lessons

const (
	__DefaultInput      = "test"
	__DefaultChunkSize  = 10
	__DefaultDataFile   = "data.txt"
	__DefaultSamplePath = `\documents\data\foo.txt`
)

// Config 课程配置
type Config struct {
	Input      string `json:"input"`       // 内存数据源的内容
	ChunkSize  int    `json:"chunk_size"`  // 块读取时缓冲区的容量
	DataFile   string `json:"data_file"`   // 按行读取的文本文件
	SamplePath string `json:"sample_path"` // 用于演示Path构造的路径
}

// DefaultConfig 返回默认配置.
func DefaultConfig() *Config {
	return &Config{
		Input:      __DefaultInput,
		ChunkSize:  __DefaultChunkSize,
		DataFile:   __DefaultDataFile,
		SamplePath: __DefaultSamplePath,
	}
}

// complete 返回填充了默认值的配置副本, cfg为nil时返回默认配置.
func (cfg *Config) complete() *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	c := *cfg
	if c.Input == "" {
		c.Input = __DefaultInput
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = __DefaultChunkSize
	}
	if c.DataFile == "" {
		c.DataFile = __DefaultDataFile
	}
	if c.SamplePath == "" {
		c.SamplePath = __DefaultSamplePath
	}
	return &c
}
