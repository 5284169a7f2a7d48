package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
	"papertube-compress/internal/infrastructure/config"
	"papertube-compress/internal/infrastructure/logging"
	infraRepos "papertube-compress/internal/infrastructure/repositories"
	"papertube-compress/internal/interface/controllers"
	"papertube-compress/internal/presentation/tui"
	usecases "papertube-compress/internal/usecase"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "papertube-compress [files...]",
	Short: "Сжатие PDF файлов через сервис сжатия с локальным резервом",
	Long: `Интерактивный режим (TUI): список файлов, уровни сжатия, пакетный режим,
прогресс и сохранение результатов. Переданные файлы добавляются при запуске.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(args)
	},
}

var (
	compressBatch bool
	compressLevel string
	compressDir   string
	compressOut   string
)

var compressCmd = &cobra.Command{
	Use:   "compress [files...]",
	Short: "Сжать PDF файлы без интерактивного интерфейса",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && compressDir == "" {
			return fmt.Errorf("укажите файлы или --dir")
		}
		return runHeadless(func(ctx context.Context, c *controllers.CLIController) error {
			return c.HandleCompress(ctx, controllers.CompressOptions{
				Paths:     args,
				Directory: compressDir,
				Batch:     compressBatch,
				Level:     compressLevel,
				Download:  true,
			})
		})
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Проверить доступность сервиса сжатия",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHeadless(func(ctx context.Context, c *controllers.CLIController) error {
			c.HandleProbe(ctx)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Файл конфигурации")

	compressCmd.Flags().BoolVarP(&compressBatch, "batch", "b", false, "Пакетный режим: один запрос для всех файлов")
	compressCmd.Flags().StringVarP(&compressLevel, "level", "l", "", "Уровень сжатия: low, medium, high, extreme")
	compressCmd.Flags().StringVarP(&compressDir, "dir", "d", "", "Добавить все PDF файлы из директории")
	compressCmd.Flags().StringVarP(&compressOut, "out", "o", "", "Директория для сжатых файлов")

	rootCmd.AddCommand(compressCmd, probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig загружает конфигурацию; при отсутствии файла создает его со значениями по умолчанию
func loadConfig() (*entities.Config, repositories.AppConfigRepository, error) {
	var configRepo repositories.AppConfigRepository = config.NewRepository()
	appConfig, err := configRepo.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := configRepo.Save(configPath, appConfig); err != nil {
			log.Printf("Предупреждение: не удалось сохранить конфигурацию: %v", err)
		}
	}
	return appConfig, configRepo, nil
}

func newFileLogger(appConfig *entities.Config) repositories.Logger {
	fileLogger, err := logging.NewFileLogger(
		appConfig.Output.LogFileName,
		appConfig.Output.LogLevel,
		appConfig.Output.LogMaxSizeMB,
		appConfig.Output.LogToFile,
	)
	if err != nil {
		log.Printf("Предупреждение: не удалось инициализировать логгер: %v", err)
	}
	return fileLogger
}

// runHeadless собирает приложение для команд без TUI
func runHeadless(run func(ctx context.Context, c *controllers.CLIController) error) error {
	appConfig, _, err := loadConfig()
	if err != nil {
		return err
	}
	if compressOut != "" {
		appConfig.Output.TargetDirectory = compressOut
	}

	logger := newFileLogger(appConfig)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := controllers.NewConsoleNotifier(os.Stdout, logging.NewLogNotifier(logger))
	workspace := usecases.NewWorkspace(infraRepos.NewMemoryBlobStore(), appConfig.Compression.DefaultLevel())
	processor := NewApplicationProcessor(appConfig, workspace, logger, notifier)
	defer processor.Shutdown()

	controller := controllers.NewCLIController(
		workspace,
		processor.intake,
		processor.probe,
		processor.compress,
		processor.download,
		os.Stdout,
	)
	return run(ctx, controller)
}

// runTUI запускает интерактивный интерфейс
func runTUI(initialPaths []string) error {
	appConfig, configRepo, err := loadConfig()
	if err != nil {
		return err
	}

	fileLogger := newFileLogger(appConfig)
	defer fileLogger.Close()

	workspace := usecases.NewWorkspace(infraRepos.NewMemoryBlobStore(), appConfig.Compression.DefaultLevel())

	// Инициализация TUI
	tuiManager := tui.NewManager(workspace, appConfig)

	// Оборачиваем логгер адаптером, чтобы видеть логи в TUI
	var logger repositories.Logger = tui.NewUILogger(fileLogger, tuiManager)
	notifier := logging.NewLogNotifier(logger)

	processor := NewApplicationProcessor(appConfig, workspace, logger, notifier)
	defer processor.Shutdown()

	workspace.SetChangeListener(tuiManager.Refresh)
	processor.compress.SetProgressReporter(tuiManager.SendRunUpdate)

	tuiManager.SetHandlers(tui.Handlers{
		OnAddPaths:     processor.AddPaths,
		OnAddDirectory: processor.AddDirectory,
		OnCompress:     processor.StartCompression,
		OnCancel:       processor.Cancel,
		OnToggleBatch:  processor.ToggleBatch,
		OnGlobalLevel:  processor.SetGlobalLevel,
		OnFileLevel:    processor.SetFileLevel,
		OnRemove:       processor.Remove,
		OnClear:        processor.Clear,
		OnDownloadAll:  processor.DownloadAll,
		OnProbe:        processor.Probe,
		OnSaveConfig: func(cfg *entities.Config) error {
			if err := configRepo.Save(configPath, cfg); err != nil {
				return err
			}
			processor.SetGlobalLevel(cfg.Compression.DefaultLevel())
			logger.Success("Конфигурация сохранена, параметры сервиса применятся после перезапуска")
			return nil
		},
	})
	tuiManager.Initialize()

	if len(initialPaths) > 0 {
		processor.AddPaths(initialPaths)
	}

	// Автозапуск после первой проверки сервиса, если включен в конфигурации
	processor.StartBackground(func() {
		if appConfig.Compression.AutoStart && len(workspace.Files()) > 0 {
			processor.StartCompression()
		}
	})

	// Запуск TUI
	if err := tuiManager.Run(); err != nil {
		return fmt.Errorf("ошибка запуска TUI: %w", err)
	}

	// Cleanup при выходе
	tuiManager.Cleanup()
	return nil
}
