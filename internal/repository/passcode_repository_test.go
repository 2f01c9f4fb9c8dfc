package repository

import (
	"testing"
	"time"

	"github.com/platemenu/platemenu/internal/domain"
)

func TestPasscodeConsumeMatchingSingleUse(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewPasscodeRepository(db)
	now := time.Now().UTC()

	p := &domain.Passcode{Email: "diner@example.com", Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}
	if err := repo.Create(p); err != nil {
		t.Fatalf("create passcode: %v", err)
	}

	consumed, err := repo.ConsumeMatching("diner@example.com", "123456", now)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !consumed {
		t.Fatal("expected first consume to succeed")
	}

	consumed, err = repo.ConsumeMatching("diner@example.com", "123456", now)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if consumed {
		t.Fatal("expected second consume to fail, code must be single-use")
	}
}

func TestPasscodeConsumeMatchingRejections(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewPasscodeRepository(db)
	now := time.Now().UTC()

	if err := repo.Create(&domain.Passcode{Email: "diner@example.com", Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}); err != nil {
		t.Fatalf("create passcode: %v", err)
	}

	t.Run("wrong code", func(t *testing.T) {
		consumed, err := repo.ConsumeMatching("diner@example.com", "654321", now)
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if consumed {
			t.Fatal("expected no consume for wrong code")
		}
	})

	t.Run("wrong email", func(t *testing.T) {
		consumed, err := repo.ConsumeMatching("other@example.com", "123456", now)
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if consumed {
			t.Fatal("expected no consume for wrong email")
		}
	})

	t.Run("expired code", func(t *testing.T) {
		consumed, err := repo.ConsumeMatching("diner@example.com", "123456", now.Add(11*time.Minute))
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		if consumed {
			t.Fatal("expected no consume past expiry")
		}
	})

	// The record itself must still exist: rejections never consume.
	var count int64
	if err := db.Model(&domain.Passcode{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining passcode, got %d", count)
	}
}

func TestPasscodeConsumeMatchingPrefersNewest(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewPasscodeRepository(db)
	now := time.Now().UTC()

	older := &domain.Passcode{Email: "diner@example.com", Code: "123456", ExpiresAt: now.Add(5 * time.Minute), CreatedAt: now.Add(-2 * time.Minute)}
	newer := &domain.Passcode{Email: "diner@example.com", Code: "123456", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now.Add(-1 * time.Minute)}
	if err := repo.Create(older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := repo.Create(newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}

	consumed, err := repo.ConsumeMatching("diner@example.com", "123456", now)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !consumed {
		t.Fatal("expected consume to succeed")
	}

	var remaining []domain.Passcode
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load remaining: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != older.ID {
		t.Fatalf("expected only the older record to remain, got %+v", remaining)
	}
}

func TestPasscodeDeleteExpired(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewPasscodeRepository(db)
	now := time.Now().UTC()

	expired := &domain.Passcode{Email: "a@example.com", Code: "111111", ExpiresAt: now.Add(-time.Minute)}
	live := &domain.Passcode{Email: "b@example.com", Code: "222222", ExpiresAt: now.Add(time.Minute)}
	if err := repo.Create(expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	if err := repo.Create(live); err != nil {
		t.Fatalf("create live: %v", err)
	}

	n, err := repo.DeleteExpired(now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}

	var remaining []domain.Passcode
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("load remaining: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != live.ID {
		t.Fatalf("expected only the live record to remain, got %+v", remaining)
	}
}
