package repo

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

func TestDailyStats_SaveGetListAndActiveUsers(t *testing.T) {
	db := newTestDB(t, &domain.DailyStats{})
	ctx := context.Background()

	for _, day := range []string{"2024-05-01", "2024-05-03", "2024-05-04"} {
		d := &domain.DailyStats{Date: day, TotalPosts: 1, MoodBreakdown: datatypes.NewJSONType(map[string]int{"sleepy_da": 1}), TopMood: "sleepy_da"}
		if err := SaveDailyStats(ctx, db, d); err != nil {
			t.Fatalf("save %s: %v", day, err)
		}
	}

	got, err := GetDailyStats(ctx, db, "2024-05-03")
	if err != nil || got.TopMood != "sleepy_da" || got.Breakdown()["sleepy_da"] != 1 {
		t.Fatalf("GetDailyStats = (%+v, %v)", got, err)
	}
	if _, err := GetDailyStats(ctx, db, "2024-05-02"); err != ErrNotFound {
		t.Fatalf("missing day err = %v; want ErrNotFound", err)
	}

	list, err := ListDailyStats(ctx, db, "2024-05-02", "2024-05-04")
	if err != nil || len(list) != 2 || list[0].Date != "2024-05-04" || list[1].Date != "2024-05-03" {
		t.Fatalf("ListDailyStats = (%v, %v)", list, err)
	}

	if err := SetActiveUsers(ctx, db, "2024-05-04", 7); err != nil {
		t.Fatalf("SetActiveUsers: %v", err)
	}
	got, _ = GetDailyStats(ctx, db, "2024-05-04")
	if got.ActiveUsers != 7 {
		t.Fatalf("active users = %d; want 7", got.ActiveUsers)
	}
	if err := SetActiveUsers(ctx, db, "2030-01-01", 1); err != ErrNotFound {
		t.Fatalf("SetActiveUsers(missing) = %v; want ErrNotFound", err)
	}
}
