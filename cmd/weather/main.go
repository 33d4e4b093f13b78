package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evyataryagoni/cityweather/internal/config"
	"github.com/evyataryagoni/cityweather/internal/logger"
	"github.com/evyataryagoni/cityweather/internal/models"
	"github.com/evyataryagoni/cityweather/internal/provider"
	"github.com/evyataryagoni/cityweather/internal/service"
	"github.com/evyataryagoni/cityweather/internal/session"
)

// weather looks up the current weather for one city and prints it
//
// Usage:
//
//	go run cmd/weather/main.go Paris
//	go run cmd/weather/main.go -v New York
func main() {
	verbose := flag.Bool("v", false, "log provider requests to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-v] <city...>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	appConfig := config.Load()

	level := "disabled"
	if *verbose {
		level = appConfig.LogLevel
	}
	appLogger := logger.New(logger.Config{Level: level, Pretty: true, Output: os.Stderr})

	weatherProvider := provider.NewWeatherAPIClient(
		appConfig.WeatherAPIBaseURL,
		appConfig.WeatherAPIKey,
		provider.ClientOptions{Timeout: appConfig.WeatherAPITimeout},
		nil,
		appLogger,
	)

	lookup := service.NewWeatherLookup(weatherProvider, session.NewMemoryStore(time.Minute), service.Options{
		RequestTimeout: appConfig.WeatherAPITimeout,
	}, nil, appLogger)

	code := run(context.Background(), lookup, strings.Join(flag.Args(), " "))
	lookup.Close()
	os.Exit(code)
}

// run submits one lookup and prints the outcome; the return value is the exit status
func run(ctx context.Context, lookup *service.WeatherLookup, city string) int {
	snapshot, err := lookup.Submit(ctx, "cli", city)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	if snapshot.State.Status == models.StatusFailed {
		fmt.Fprintf(os.Stderr, "❌ %s\n", snapshot.State.Message)
		return 1
	}

	printResult(snapshot.Result)
	return 0
}

func printResult(result *models.WeatherResult) {
	fmt.Printf("%s, %s\n", result.CityName, result.CountryName)
	fmt.Printf("%g °C, %s\n", result.TemperatureCelsius, result.ConditionText)
	fmt.Printf("Icon: %s\n", result.IconURL)
}
