package domain

import (
	"encoding/json"
	"time"
)

// VerificationResult 人机验证结果
type VerificationResult struct {
	Success     bool
	Hostname    string
	ChallengeTS time.Time
	ErrorCodes  []string
	Raw         json.RawMessage // 服务商原始响应，用于排查
}
