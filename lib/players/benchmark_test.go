package players

import (
	"testing"

	"github.com/ValentinKolb/dRelay/lib/data"
)

// BenchmarkPlayerManager runs the full level scenario (100 levels x 10 players) per iteration
func BenchmarkPlayerManager(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m := NewPlayerManager()
		for levelID := int32(0); levelID < 100; levelID++ {
			for j := int32(0); j < 10; j++ {
				m.AddToLevel(levelID, levelID*10+j)
				m.SetPlayerData(levelID*10+j, data.PlayerData{})
			}
		}

		total := 0
		for levelID := int32(0); levelID < 100; levelID++ {
			ForEachPlayerOnLevelWith(m, levelID, func(_ int32, _ *data.PlayerData, total *int) bool {
				*total++
				return true
			}, &total)
		}
		if total != 1000 {
			b.Fatalf("expected 1000 visits, got %d", total)
		}

		for levelID := int32(0); levelID < 100; levelID++ {
			for j := int32(0); j < 10; j++ {
				m.RemoveFromLevel(levelID, levelID*10+j)
				m.RemovePlayer(levelID*10 + j)
			}
		}
	}
}

// BenchmarkForEachParallel iterates distinct levels from parallel goroutines
func BenchmarkForEachParallel(b *testing.B) {
	m := NewPlayerManager()
	for levelID := int32(0); levelID < 64; levelID++ {
		for j := int32(0); j < 32; j++ {
			m.AddToLevel(levelID, levelID*32+j)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		levelID := int32(0)
		for pb.Next() {
			m.ForEachPlayerOnLevel(levelID%64, func(_ int32, d *data.PlayerData) bool {
				d.Attempts++
				return true
			})
			levelID++
		}
	})
}
