package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourorg/nextride/internal/config"
	"github.com/yourorg/nextride/internal/grt"
)

func main() {
	_ = godotenv.Load()
	run(os.Stdin, os.Stdout)
}

// run atiende el menú hasta que se elige salir o se cierra la entrada
func run(in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprintln(out, "==== NextRide CLI ====")
		fmt.Fprintln(out, "1) Health check API")
		fmt.Fprintln(out, "2) Scrape stop (all trips)")
		fmt.Fprintln(out, "3) Exit")
		fmt.Fprint(out, "Select option: ")
		choice, ok := readLine(reader)
		if !ok {
			fmt.Fprintln(out)
			return
		}
		switch choice {
		case "1":
			doHealthCheck(out)
		case "2":
			fmt.Fprint(out, "Stop number: ")
			raw, ok := readLine(reader)
			if !ok {
				fmt.Fprintln(out)
				return
			}
			doScrape(out, raw)
		case "3":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Invalid option")
		}
		fmt.Fprintln(out)
	}
}

// readLine retorna false cuando la entrada se cerró sin datos pendientes
func readLine(r *bufio.Reader) (string, bool) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func doHealthCheck(out io.Writer) {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:8000"
	}
	url := strings.TrimRight(base, "/") + "/"
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintln(out, "Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Fprintln(out, "Health status:", resp.Status)
}

// doScrape corre el scraper en proceso, sin pasar por la API
func doScrape(out io.Writer, raw string) {
	stop, err := strconv.Atoi(raw)
	if err != nil || stop <= 0 {
		fmt.Fprintln(out, "Scrape: stop number must be a positive integer")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Println("Scrape: config error:", err)
		return
	}
	svc, err := grt.NewServiceFromConfig(cfg)
	if err != nil {
		log.Println("Scrape: setup error:", err)
		return
	}

	trips, err := svc.Trips(context.Background(), stop)
	if err != nil {
		fmt.Fprintf(out, "Scrape: ERROR (%s): %v\n", grt.KindOf(err), err)
		return
	}

	fmt.Fprintf(out, "Stop %d: %d trips (%d real-time)\n", stop, len(trips), len(grt.FilterRealTime(trips)))
	for _, t := range trips {
		marker := "  "
		if t.IsRealTime {
			marker = "RT"
		}
		fmt.Fprintf(out, "  [%s] %-5s %-28s %-24s %s\n", marker, t.Route, t.RouteName, t.DestinationDetail, t.Departure)
	}
}
