package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"papertube-compress/internal/domain/entities"
	usecases "papertube-compress/internal/usecase"
)

// CompressOptions параметры неинтерактивного запуска
type CompressOptions struct {
	Paths     []string
	Directory string
	Batch     bool
	Level     string
	Download  bool
}

// CLIController контроллер командной строки: прием файлов, сжатие и сохранение без TUI
type CLIController struct {
	workspace *usecases.Workspace
	intake    *usecases.IntakeUseCase
	probe     *usecases.ProbeBackendUseCase
	compress  *usecases.CompressUseCase
	download  *usecases.DownloadUseCase
	out       io.Writer
}

// NewCLIController создает новый CLI контроллер
func NewCLIController(
	workspace *usecases.Workspace,
	intake *usecases.IntakeUseCase,
	probe *usecases.ProbeBackendUseCase,
	compress *usecases.CompressUseCase,
	download *usecases.DownloadUseCase,
	out io.Writer,
) *CLIController {
	return &CLIController{
		workspace: workspace,
		intake:    intake,
		probe:     probe,
		compress:  compress,
		download:  download,
		out:       out,
	}
}

// HandleProbe проверяет доступность сервиса сжатия
func (c *CLIController) HandleProbe(ctx context.Context) entities.BackendStatus {
	status := c.probe.Execute(ctx)
	fmt.Fprintf(c.out, "Сервис сжатия: %s\n", status)
	return status
}

// HandleCompress выполняет полный цикл: прием, проверка сервиса, сжатие, сохранение
func (c *CLIController) HandleCompress(ctx context.Context, opts CompressOptions) error {
	fmt.Fprintln(c.out, "🔥 PDF Compressor - Сжатие PDF файлов")
	fmt.Fprintln(c.out, "====================================")

	if opts.Level != "" {
		level, err := entities.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		if err := c.workspace.SetGlobalLevel(level); err != nil {
			return err
		}
	}

	if err := c.addCandidates(opts); err != nil {
		return err
	}

	if opts.Batch {
		if err := c.workspace.SetBatchMode(true); err != nil {
			return fmt.Errorf("ошибка включения пакетного режима: %w", err)
		}
	}

	c.probe.Execute(ctx)

	preset := c.workspace.GlobalLevel().Preset()
	fmt.Fprintf(c.out, "\n🚀 Сжатие %d файлов, уровень: %s (%s)\n", len(c.workspace.Files()), preset.Name, preset.ExpectedReduction)

	run, err := c.compress.Execute(ctx)
	if err != nil {
		return fmt.Errorf("ошибка сжатия: %w", err)
	}

	c.showRun(run)

	if !opts.Download {
		return nil
	}
	paths, err := c.download.DownloadAll()
	if err != nil {
		return fmt.Errorf("ошибка сохранения: %w", err)
	}
	for _, p := range paths {
		fmt.Fprintf(c.out, "💾 %s\n", p)
	}
	return nil
}

func (c *CLIController) addCandidates(opts CompressOptions) error {
	var accepted int
	if len(opts.Paths) > 0 {
		added, err := c.intake.AddFiles(opts.Paths)
		if err != nil && !errors.Is(err, entities.ErrNoFilesAccepted) {
			return err
		}
		accepted += len(added)
	}
	if opts.Directory != "" {
		added, err := c.intake.AddDirectory(opts.Directory)
		if err != nil && !errors.Is(err, entities.ErrNoFilesAccepted) {
			return err
		}
		accepted += len(added)
	}
	if accepted == 0 {
		return entities.ErrNoFilesAccepted
	}
	return nil
}

// showRun показывает результат запуска
func (c *CLIController) showRun(run *entities.Run) {
	fmt.Fprintln(c.out, "\n📊 Результаты сжатия:")
	for _, f := range c.workspace.Files() {
		if !f.HasResult() {
			fmt.Fprintf(c.out, "  ✗ %s (%s): не сжат\n", f.Name, f.DisplaySize)
			continue
		}
		fmt.Fprintf(c.out, "  ✓ %s: %s → %s (%.1f%%)\n",
			f.Name, f.DisplaySize, entities.FormatSize(*f.CompressedSize), *f.CompressionRatio)
	}

	s := c.workspace.Summary()
	fmt.Fprintf(c.out, "\nВсего файлов: %d, сжато: %d\n", s.TotalFiles, s.SuccessfulFiles)
	fmt.Fprintf(c.out, "Исходный размер: %s, сжатый: %s, сэкономлено: %s\n",
		entities.FormatSize(s.TotalOriginalSize), entities.FormatSize(s.TotalCompressedSize), entities.FormatSize(s.TotalSavedSpace))
	fmt.Fprintf(c.out, "Среднее сжатие: %.1f%%\n", s.AverageRatio)

	if run.Simulated {
		fmt.Fprintln(c.out, "⚠️ Результаты получены локально, сервис сжатия не использовался")
	}
	fmt.Fprintf(c.out, "\n🎉 Готово за %s\n", run.FormatElapsedTime())
}
