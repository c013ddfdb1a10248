package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/annel0/voxel4d/internal/eventbus"
)

const (
	defaultNatsURL = "nats://127.0.0.1:4222"
	timeFormat     = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		natsURL    = flag.String("nats", defaultNatsURL, "NATS server URL")
		stream     = flag.String("stream", "VOXEL4D", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats, types")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		sources    = flag.String("sources", "", "Event sources filter (comma-separated)")
		since      = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
		window     = flag.Duration("window", 2*time.Second, "How long stats listens to the stream")
	)
	flag.Parse()

	if *command == "types" {
		showTypes()
		return
	}

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startTime, err := parseSinceTime(*since, time.Now())
	if err != nil {
		log.Fatalf("❌ Invalid since time: %v", err)
	}
	filter := eventbus.Filter{
		Types:   parseStringList(*eventTypes),
		Sources: parseStringList(*sources),
	}

	switch *command {
	case "tail":
		if err := tailEvents(ctx, bus, &TailOptions{
			Filter: filter,
			Since:  startTime,
			Limit:  *limit,
			Follow: *follow,
		}); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "stats":
		if err := showStats(ctx, bus, filter, startTime, *window); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats, types")
		os.Exit(1)
	}
}

type TailOptions struct {
	Filter eventbus.Filter
	Since  time.Time
	Limit  int
	Follow bool
}

// tailEvents выводит события стрима, начиная с Since
func tailEvents(ctx context.Context, bus eventbus.EventBus, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing events (limit: %d, follow: %v)\n", opts.Limit, opts.Follow)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	eventCount := 0
	sub, err := bus.Subscribe(ctx, opts.Filter, func(_ context.Context, ev *eventbus.Envelope) {
		if ev.Timestamp.Before(opts.Since) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if !opts.Follow && eventCount >= opts.Limit {
			return
		}
		printEvent(ev)
		eventCount++
		if !opts.Follow && eventCount >= opts.Limit {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()

	mu.Lock()
	fmt.Printf("\n📊 Total events: %d\n", eventCount)
	mu.Unlock()
	return nil
}

// showStats слушает стрим window и выводит число событий по типам
func showStats(ctx context.Context, bus eventbus.EventBus, f eventbus.Filter, since time.Time, window time.Duration) error {
	fmt.Println("📊 Event statistics")

	var mu sync.Mutex
	byType := make(map[string]int)
	total := 0
	sub, err := bus.Subscribe(ctx, f, func(_ context.Context, ev *eventbus.Envelope) {
		if ev.Timestamp.Before(since) {
			return
		}
		mu.Lock()
		byType[ev.EventType]++
		total++
		mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(window):
	}
	sub.Unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	fmt.Printf("Period: %s - %s\n", since.UTC().Format(timeFormat), time.Now().UTC().Format(timeFormat))
	fmt.Printf("Total events: %d\n", total)
	fmt.Println("\nBy event type:")
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %s: %d events\n", t, byType[t])
	}
	return nil
}

// showTypes выводит типы событий, которые публикует просмотрщик
func showTypes() {
	fmt.Println("📋 Available event types")
	for _, t := range []struct{ name, description string }{
		{eventbus.TypeRotationStarted, "4D camera rotation began (generator, inverse)"},
		{eventbus.TypeRotationFinished, "4D camera rotation snapped to its target"},
		{eventbus.TypeAgentSpawned, "physics agent created at the spawn point"},
		{eventbus.TypeAgentDied, "physics agent was pinched or crushed"},
	} {
		fmt.Printf("Type: %s\n", t.name)
		fmt.Printf("  Description: %s\n", t.description)
	}
}

// printEvent выводит событие в читаемом формате
func printEvent(ev *eventbus.Envelope) {
	fmt.Printf("[%s] %s [%s] %s\n",
		ev.Timestamp.Format("15:04:05"),
		ev.Source,
		ev.EventType,
		ev.ID)

	// Детали в зависимости от типа события
	switch ev.EventType {
	case eventbus.TypeRotationStarted, eventbus.TypeRotationFinished:
		var r eventbus.RotationEvent
		if err := ev.Decode(&r); err == nil {
			fmt.Printf("  Generator: %s Inverse: %v\n", r.Generator, r.Inverse)
		}
	case eventbus.TypeAgentSpawned, eventbus.TypeAgentDied:
		var a eventbus.AgentEvent
		if err := ev.Decode(&a); err == nil {
			fmt.Printf("  Agent: %s Position: (%.2f,%.2f,%.2f) Crushed: %v\n",
				a.AgentID, a.Position[0], a.Position[1], a.Position[2], a.Crushed)
		}
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSinceTime парсит относительное время типа "1h", "30m"
func parseSinceTime(since string, from time.Time) (time.Time, error) {
	if since == "" {
		return from, nil
	}

	duration, err := time.ParseDuration(since)
	if err != nil {
		// Пробуем парсить как абсолютное время
		return time.Parse(timeFormat, since)
	}

	return from.Add(-duration), nil
}
