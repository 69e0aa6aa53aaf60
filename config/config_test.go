package config

import (
	"testing"
	"time"
)

// ============================================================================
//                              默认配置测试
// ============================================================================

// TestNewConfigValid 测试默认配置通过验证
func TestNewConfigValid(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("默认配置验证失败: %v", err)
	}

	if cfg.Central.Name != "homecentral" {
		t.Errorf("默认实例名 = %q, 期望 homecentral", cfg.Central.Name)
	}
	if cfg.Recovery.MaxAttempts != 8 {
		t.Errorf("默认 MaxAttempts = %d, 期望 8", cfg.Recovery.MaxAttempts)
	}
	if cfg.Recovery.BaseRetryDelay.Duration() != 1*time.Second {
		t.Errorf("默认 BaseRetryDelay = %v, 期望 1s", cfg.Recovery.BaseRetryDelay.Duration())
	}
}

// TestValidateRejectsInvalid 测试无效配置被拒绝
func TestValidateRejectsInvalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"空实例名", func(c *Config) { c.Central.Name = "" }},
		{"空接口 ID", func(c *Config) { c.Central.Interfaces = []string{""} }},
		{"重复接口 ID", func(c *Config) { c.Central.Interfaces = []string{"hmip", "hmip"} }},
		{"零尝试次数", func(c *Config) { c.Recovery.MaxAttempts = 0 }},
		{"零并发数", func(c *Config) { c.Recovery.MaxConcurrent = 0 }},
		{"封顶小于基准", func(c *Config) {
			c.Recovery.BaseRetryDelay = Duration(10 * time.Second)
			c.Recovery.MaxRetryDelay = Duration(1 * time.Second)
		}},
		{"未知日志级别", func(c *Config) { c.Log.Level = "verbose" }},
		{"未知日志格式", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("期望验证失败")
			}
		})
	}
}

// ============================================================================
//                              JSON 转换测试
// ============================================================================

// TestFromJSON 测试从 JSON 加载配置
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"central": {"name": "ccu-main", "interfaces": ["hmip", "wired"]},
		"recovery": {"max_attempts": 4, "base_retry_delay": "2s"}
	}`)

	cfg, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON 失败: %v", err)
	}

	if cfg.Central.Name != "ccu-main" {
		t.Errorf("Name = %q, 期望 ccu-main", cfg.Central.Name)
	}
	if len(cfg.Central.Interfaces) != 2 {
		t.Errorf("接口数 = %d, 期望 2", len(cfg.Central.Interfaces))
	}
	if cfg.Recovery.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, 期望 4", cfg.Recovery.MaxAttempts)
	}
	if cfg.Recovery.BaseRetryDelay.Duration() != 2*time.Second {
		t.Errorf("BaseRetryDelay = %v, 期望 2s", cfg.Recovery.BaseRetryDelay.Duration())
	}

	// 未给出的字段保留默认值
	if cfg.Recovery.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, 期望保留默认 3", cfg.Recovery.MaxConcurrent)
	}
}

// TestFromJSONInvalid 测试非法 JSON 报错
func TestFromJSONInvalid(t *testing.T) {
	if _, err := FromJSON([]byte(`{not json`)); err == nil {
		t.Error("期望解析失败")
	}
	if _, err := FromJSON([]byte(`{"recovery": {"base_retry_delay": "forever"}}`)); err == nil {
		t.Error("期望时长解析失败")
	}
}

// TestJSONRoundTrip 测试序列化往返
func TestJSONRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Central.Name = "ccu-main"
	cfg.Recovery.MaxRetryDelay = Duration(90 * time.Second)

	data, err := cfg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON 失败: %v", err)
	}

	loaded, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON 失败: %v", err)
	}
	if loaded.Central.Name != "ccu-main" {
		t.Errorf("往返后 Name = %q", loaded.Central.Name)
	}
	if loaded.Recovery.MaxRetryDelay.Duration() != 90*time.Second {
		t.Errorf("往返后 MaxRetryDelay = %v", loaded.Recovery.MaxRetryDelay.Duration())
	}
}

// ============================================================================
//                              预设测试
// ============================================================================

// TestApplyPreset 测试预设应用
func TestApplyPreset(t *testing.T) {
	cfg := NewConfig()
	if err := ApplyPreset(cfg, "embedded"); err != nil {
		t.Fatalf("应用 embedded 预设失败: %v", err)
	}
	if cfg.Recovery.MaxConcurrent != 1 {
		t.Errorf("embedded 预设 MaxConcurrent = %d, 期望 1", cfg.Recovery.MaxConcurrent)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("embedded 预设日志级别 = %q, 期望 warn", cfg.Log.Level)
	}

	cfg = NewConfig()
	if err := ApplyPreset(cfg, "testing"); err != nil {
		t.Fatalf("应用 testing 预设失败: %v", err)
	}
	if cfg.Recovery.HeartbeatEnabled {
		t.Error("testing 预设应禁用心跳循环")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("testing 预设后验证失败: %v", err)
	}

	if err := ApplyPreset(cfg, "desktop"); err == nil {
		t.Error("未知预设应报错")
	}
	if err := ApplyPreset(nil, "standard"); err == nil {
		t.Error("nil 配置应报错")
	}
	if err := ApplyPreset(NewConfig(), ""); err != nil {
		t.Errorf("空预设应为无操作: %v", err)
	}
}
