package model

type RegistryStats struct {
	TotalModels     int
	TotalVersions   int
	ModelsByRuntime map[string]int
}

func NewRegistryStats(models ModelList) RegistryStats {
	stats := RegistryStats{ModelsByRuntime: make(map[string]int)}
	for _, m := range models {
		stats.TotalModels++
		stats.TotalVersions += len(m.Versions)
		stats.ModelsByRuntime[m.Runtime]++
	}
	return stats
}
