package limiter

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestTryAcquire_Unlimited(t *testing.T) {
	l := New(Config{})
	tree := uuid.New()

	// Без лимитов любой запрос успешен.
	for i := 0; i < 100; i++ {
		release, ok := l.TryAcquire("user", tree)
		if !ok {
			t.Fatalf("acquire %d should succeed with no caps", i)
		}
		defer release()
	}
}

func TestTryAcquire_GlobalCap(t *testing.T) {
	l := New(Config{Global: 2})
	tree := uuid.New()

	r1, ok := l.TryAcquire("u1", tree)
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	r2, ok := l.TryAcquire("u2", tree)
	if !ok {
		t.Fatal("second acquire should succeed")
	}

	if _, ok := l.TryAcquire("u3", tree); ok {
		t.Fatal("third acquire should fail at global cap 2")
	}

	r1()
	r3, ok := l.TryAcquire("u3", tree)
	if !ok {
		t.Fatal("acquire should succeed after release")
	}
	r2()
	r3()
}

func TestTryAcquire_PerUserCap(t *testing.T) {
	l := New(Config{PerUser: 1})

	r1, ok := l.TryAcquire("alice", uuid.New())
	if !ok {
		t.Fatal("first acquire for alice should succeed")
	}

	if _, ok := l.TryAcquire("alice", uuid.New()); ok {
		t.Fatal("second acquire for alice should fail")
	}

	// Другой пользователь не ограничен чужим scope.
	r2, ok := l.TryAcquire("bob", uuid.New())
	if !ok {
		t.Fatal("acquire for bob should succeed")
	}

	r1()
	r2()
}

func TestTryAcquire_PerTreeCap(t *testing.T) {
	l := New(Config{PerTree: 1})
	tree := uuid.New()

	r1, ok := l.TryAcquire("u1", tree)
	if !ok {
		t.Fatal("first acquire should succeed")
	}

	if _, ok := l.TryAcquire("u2", tree); ok {
		t.Fatal("second acquire in same tree should fail")
	}

	other, ok := l.TryAcquire("u2", uuid.New())
	if !ok {
		t.Fatal("acquire in another tree should succeed")
	}

	r1()
	other()
}

func TestTryAcquire_AllOrNothing(t *testing.T) {
	// Глобальный permit свободен, но user-лимит исчерпан: глобальный
	// не должен остаться захваченным после неудачи.
	l := New(Config{Global: 1, PerUser: 1})
	tree := uuid.New()

	r1, ok := l.TryAcquire("alice", tree)
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	r1()

	r2, ok := l.TryAcquire("alice", tree)
	if !ok {
		t.Fatal("re-acquire should succeed after release")
	}

	// alice упёрлась в свой лимит; глобальный permit не утёк.
	if _, ok := l.TryAcquire("alice", tree); ok {
		t.Fatal("acquire should fail on user cap")
	}
	r2()

	if _, ok := l.TryAcquire("bob", tree); !ok {
		t.Fatal("global permit leaked after failed all-or-nothing acquire")
	}
}

func TestRelease_ExactlyOnce(t *testing.T) {
	l := New(Config{Global: 1})
	tree := uuid.New()

	release, ok := l.TryAcquire("u", tree)
	if !ok {
		t.Fatal("acquire should succeed")
	}

	// Двойной release не должен раздуть лимит.
	release()
	release()

	r1, ok := l.TryAcquire("u", tree)
	if !ok {
		t.Fatal("acquire should succeed after release")
	}
	if _, ok := l.TryAcquire("u", tree); ok {
		t.Fatal("double release inflated the cap")
	}
	r1()
}

func TestTryAcquire_ConcurrentNeverExceedsCap(t *testing.T) {
	const limit = 3
	const workers = 20

	l := New(Config{Global: limit})
	tree := uuid.New()

	var mu sync.Mutex
	running := 0
	peak := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				release, ok := l.TryAcquire("u", tree)
				if !ok {
					continue
				}
				mu.Lock()
				running++
				if running > peak {
					peak = running
				}
				mu.Unlock()

				mu.Lock()
				running--
				mu.Unlock()
				release()
			}
		}()
	}
	wg.Wait()

	if peak > limit {
		t.Fatalf("running tasks peaked at %d, cap is %d", peak, limit)
	}
}

func TestForgetTree(t *testing.T) {
	l := New(Config{PerTree: 1})
	tree := uuid.New()

	release, ok := l.TryAcquire("u", tree)
	if !ok {
		t.Fatal("acquire should succeed")
	}
	release()
	l.ForgetTree(tree)

	// Новый семафор после забывания — лимит снова доступен.
	r, ok := l.TryAcquire("u", tree)
	if !ok {
		t.Fatal("acquire should succeed after ForgetTree")
	}
	r()
}
