package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 진행 이벤트, 실행 요약에서 이 상수를 사용해야 함
//
// 흐름:
//   Universe → Fetch → Score → Select → Output

// Stage represents a screening run stage
type Stage string

const (
	// StageUniverse: 소스 체인을 따라 종목 목록 확정
	// 위치: internal/universe/
	StageUniverse Stage = "UNIVERSE"

	// StageFetch: 종목별 시세/재무 스냅샷 수집
	// 위치: internal/external/yahoo/
	StageFetch Stage = "FETCH"

	// StageScore: 4개 컴포넌트 점수 + 가중 합산
	// 위치: internal/signals/, internal/selection/composite.go
	StageScore Stage = "SCORE"

	// StageSelect: 최소 점수 필터, 정렬, 섹터 캡 Top N
	// 위치: internal/selection/
	StageSelect Stage = "SELECT"

	// StageOutput: CSV/JSON 산출물 기록
	// 위치: internal/output/
	StageOutput Stage = "OUTPUT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns a short human description of the stage
func (s Stage) Description() string {
	switch s {
	case StageUniverse:
		return "universe resolution"
	case StageFetch:
		return "market data fetch"
	case StageScore:
		return "component + composite scoring"
	case StageSelect:
		return "ranking and selection"
	case StageOutput:
		return "artifact output"
	default:
		return "unknown"
	}
}

// AllStages returns all stages in order
func AllStages() []Stage {
	return []Stage{StageUniverse, StageFetch, StageScore, StageSelect, StageOutput}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// RunCounts is the aggregate every batch reports, success or not
type RunCounts struct {
	Analyzed  int `json:"total_analyzed"`
	Qualified int `json:"qualified_count"`
	Failed    int `json:"failed_count"`
}
