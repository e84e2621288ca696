package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/gifnodes/internal/config"
	"github.com/ivlev/gifnodes/internal/engine"
	"github.com/ivlev/gifnodes/internal/grid"
	"github.com/ivlev/gifnodes/internal/node"
	"github.com/ivlev/gifnodes/internal/nodes"
	"github.com/ivlev/gifnodes/internal/source"
	"github.com/ivlev/gifnodes/internal/sprite"
	"github.com/ivlev/gifnodes/internal/system"
	"github.com/ivlev/gifnodes/internal/tensor"
	"github.com/ivlev/gifnodes/internal/workflow"
)

// Подставляется при сборке: -ldflags "-X main.version=..."
var version = "dev"

// setFlag собирает повторяющиеся -set key=value.
type setFlag map[string]any

func (s setFlag) String() string { return fmt.Sprint(map[string]any(s)) }

func (s setFlag) Set(v string) error {
	key, val, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	s[strings.TrimSpace(key)] = val
	return nil
}

func main() {
	configPtr := flag.String("config", "", "YAML-файл конфигурации")
	outputPtr := flag.String("output-dir", "", "Папка для GIF и сохраненных изображений (по умолчанию: output)")
	workflowPtr := flag.String("workflow", "", "Файл сценария (YAML); 'latest' - самый свежий в workflows/")
	nodePtr := flag.String("node", "", "Идентификатор узла для одиночного запуска")
	savePtr := flag.String("save", "", "Сохранить IMAGE-результат -node в PNG")
	listPtr := flag.Bool("list", false, "Вывести схемы всех узлов (YAML)")
	latestPtr := flag.Bool("latest", false, "Показать самый свежий GIF из папки вывода")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	strictPtr := flag.Bool("strict-grid", false, "Ошибка, если сетка не делит изображение нацело")
	workersPtr := flag.Int("workers", system.DefaultWorkers(), "Потоки")
	timeoutPtr := flag.Duration("timeout", config.DefaultHTTPTimeout, "Таймаут HTTP-загрузки")
	dpiPtr := flag.Int("dpi", config.DefaultDPI, "DPI для страниц PDF на входах IMAGE")
	sets := setFlag{}
	flag.Var(sets, "set", "Вход узла key=value (можно повторять; $$ в начале - буквальный $)")

	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
	}
	if cfg.Workers == 0 {
		cfg.Workers = *workersPtr
	}

	// Явно заданные флаги важнее файла конфигурации
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output-dir":
			cfg.OutputDir = *outputPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "strict-grid":
			cfg.StrictGrid = *strictPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "timeout":
			cfg.HTTPTimeout = *timeoutPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		}
	})
	cfg.BuildVersion = version
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	reg := nodes.NewRegistry()
	if err := reg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	if *listPtr {
		data, err := yaml.Marshal(reg.ObjectInfo())
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		os.Stdout.Write(data)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	host := engine.NewHost(reg, cfg)
	startTime := time.Now()

	switch {
	case *workflowPtr != "":
		path := *workflowPtr
		if path == "latest" {
			latest, err := workflow.FindLatest("workflows")
			if err != nil {
				log.Fatalf("[-] Ошибка: %v. Положите сценарий в workflows/", err)
			}
			path = latest
			fmt.Printf("[*] Выбран сценарий: %s\n", path)
		}
		wf, err := workflow.Read(path)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения сценария: %v", err)
		}
		results, err := host.Run(ctx, wf)
		if err != nil {
			fatal(err)
		}
		for _, r := range results {
			printOutput(r.ID, r.Output)
		}

	case *latestPtr:
		latest, err := system.FindLatestGIF(cfg.OutputDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		out, err := host.Invoke(ctx, "ShowGif", map[string]any{"filename": latest})
		if err != nil {
			fatal(err)
		}
		printOutput("ShowGif", out)

	case *nodePtr != "":
		wf := &workflow.Workflow{Version: "1.0", Steps: []workflow.Step{
			{ID: *nodePtr, Node: *nodePtr, Inputs: sets, Save: *savePtr},
		}}
		results, err := host.Run(ctx, wf)
		if err != nil {
			fatal(err)
		}
		printOutput(*nodePtr, results[0].Output)

	default:
		fmt.Fprintln(os.Stderr, "Usage: gifnodes -list | -node ID [-set key=value ...] | -workflow FILE | -latest")
		flag.PrintDefaults()
		os.Exit(2)
	}

	fmt.Printf("[+++] Готово за %.2fs\n", time.Since(startTime).Seconds())
}

func printOutput(id string, out node.Output) {
	for i, v := range out.Values {
		switch val := v.(type) {
		case *tensor.Tensor:
			fmt.Printf("[>] %s.%d: IMAGE %v\n", id, i, val)
		default:
			fmt.Printf("[>] %s.%d: %v\n", id, i, val)
		}
	}
	if out.UI != nil {
		data, err := yaml.Marshal(out.UI)
		if err == nil {
			fmt.Printf("[>] %s ui:\n%s", id, data)
		}
	}
}

// fatal печатает подсказку по типу ошибки и завершает процесс.
func fatal(err error) {
	var geo *grid.GeometryError
	var netErr *source.NetworkError
	var decErr *source.DecodeError
	switch {
	case errors.As(err, &geo):
		log.Printf("[!] Проверьте rows/columns: изображение %dx%d", geo.Width, geo.Height)
	case errors.As(err, &netErr):
		log.Printf("[!] Сетевая ошибка для %s", netErr.URL)
	case errors.As(err, &decErr):
		log.Printf("[!] Не удалось декодировать данные (%s)", decErr.Format)
	case errors.Is(err, sprite.ErrNoFrames):
		log.Printf("[!] В анимации нет кадров")
	}
	log.Fatalf("[-] Ошибка: %v", err)
}
