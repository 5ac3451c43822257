package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/product-inventory/internal/app"
	"github.com/rl1809/product-inventory/internal/config"
	"github.com/rl1809/product-inventory/internal/core/domain"
	"github.com/rl1809/product-inventory/internal/core/service"
	"github.com/rl1809/product-inventory/internal/logging"
)

func main() {
	stock := flag.Int64("stock", 20, "initial quantity of the test item")
	requests := flag.Int("requests", 50, "number of concurrent single-unit reservations")
	flag.Parse()

	if err := run(*stock, *requests); err != nil {
		log.Printf("stress test failed: %v", err)
		os.Exit(1)
	}
}

func run(stock int64, requests int) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		ServiceName: "stress-test",
		Env:         string(cfg.AppEnv),
		Level:       "warn",
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	reservations := service.NewReservationService(store, logger)

	item, err := reservations.CreateItem(ctx, domain.NewItem{
		Description: "stress-test-item",
		Quantity:    stock,
	})
	if err != nil {
		return fmt.Errorf("create test item: %w", err)
	}

	var (
		successCount  atomic.Int64
		declinedCount atomic.Int64
		errorCount    atomic.Int64
		wg            sync.WaitGroup
	)
	start := time.Now()

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := reservations.Reserve(ctx, item.ID, 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientQuantity):
				declinedCount.Add(1)
			default:
				errorCount.Add(1)
				logger.Error("reserve failed", zap.Error(err))
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	final, err := reservations.GetItem(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("read final quantity: %w", err)
	}

	expectedSuccess := min(stock, int64(requests))
	success := successCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Store Driver:     %s\n", cfg.StoreDriver)
	fmt.Printf("Initial Stock:    %d\n", stock)
	fmt.Printf("Total Requests:   %d\n", requests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Declined:         %d\n", declinedCount.Load())
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Final Quantity:   %d\n", final.Quantity)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success != expectedSuccess {
		return fmt.Errorf("expected %d successful reservations, got %d", expectedSuccess, success)
	}
	if final.Quantity != stock-expectedSuccess {
		return fmt.Errorf("expected final quantity %d, got %d", stock-expectedSuccess, final.Quantity)
	}

	fmt.Println("PASS: no oversell, stock accounted for")
	return nil
}
