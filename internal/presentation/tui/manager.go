package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"papertube-compress/internal/domain/entities"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// UI Configuration constants
const (
	MaxLogBufferSize   = 1000
	LogFlushInterval   = 50 * time.Millisecond
	ProgressBarWidth   = 20
	MaxFileNameLength  = 40
	MaxFileNameDisplay = 37
	SummaryViewHeight  = 11
)

// WorkspaceView проекция состояния рабочей области только для чтения
type WorkspaceView interface {
	Files() []entities.ManagedFile
	Summary() entities.RunSummary
	Run() entities.Run
	GlobalLevel() entities.CompressionLevel
	BatchMode() bool
	Backend() entities.BackendStatus
}

// Handlers действия пользователя, которые выполняет приложение
type Handlers struct {
	OnAddPaths     func(paths []string)
	OnAddDirectory func(dir string)
	OnCompress     func(ids ...string)
	OnCancel       func()
	OnToggleBatch  func()
	OnGlobalLevel  func(level entities.CompressionLevel)
	OnFileLevel    func(id string, level entities.CompressionLevel)
	OnRemove       func(id string)
	OnClear        func()
	OnDownloadAll  func()
	OnProbe        func()
	OnSaveConfig   func(cfg *entities.Config) error
}

// Manager управляет TUI интерфейсом
type Manager struct {
	app           *tview.Application
	pages         *tview.Pages
	currentScreen entities.UIScreen

	// UI компоненты
	mainMenu    *tview.List
	fileTable   *tview.Table
	summaryView *tview.TextView
	logView     *tview.TextView
	statusBar   *tview.TextView
	addForm     *tview.Form
	configForm  *tview.Form

	view     WorkspaceView
	handlers Handlers
	config   entities.Config

	// Состояние
	logBuffer     []string
	statusMutex   sync.RWMutex
	refreshQueued atomic.Bool

	// Оптимизированный батчинг логов через канал
	logChan  chan string
	logDone  chan struct{}
	logMutex sync.Mutex
}

// NewManager создает новый менеджер TUI
func NewManager(view WorkspaceView, config *entities.Config) *Manager {
	m := &Manager{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		view:      view,
		config:    *config,
		logBuffer: make([]string, 0, MaxLogBufferSize),
		logChan:   make(chan string, 100),
		logDone:   make(chan struct{}),
	}
	go m.logProcessor()
	return m
}

// SetHandlers устанавливает обработчики действий пользователя
func (m *Manager) SetHandlers(h Handlers) {
	m.handlers = h
}

// Initialize инициализирует TUI
func (m *Manager) Initialize() {
	m.createUI()
	m.setupKeyBindings()
	m.render()
}

// Run запускает TUI
func (m *Manager) Run() error {
	return m.app.SetRoot(m.pages, true).EnableMouse(true).Run()
}

// Refresh перерисовывает таблицу файлов и сводку.
// Повторные вызовы до отрисовки схлопываются в одну.
func (m *Manager) Refresh() {
	if !m.refreshQueued.CompareAndSwap(false, true) {
		return
	}
	go m.app.QueueUpdateDraw(func() {
		m.refreshQueued.Store(false)
		m.render()
	})
}

// SendRunUpdate отображает фазу запуска в строке статуса
func (m *Manager) SendRunUpdate(run entities.Run) {
	text := fmt.Sprintf("[yellow]⚙️  Фаза:[white] %s", run.Phase)
	if run.Phase != entities.PhaseIdle {
		text += fmt.Sprintf("  [yellow]⏱️[white] %s", run.FormatElapsedTime())
	}
	if run.Error != nil {
		text += fmt.Sprintf("  [red]%v[white]", run.Error)
	}
	go m.app.QueueUpdateDraw(func() {
		m.statusBar.SetText(text)
	})
	m.Refresh()
}

// createUI создает пользовательский интерфейс
func (m *Manager) createUI() {
	m.createMainMenu()
	m.createFilesScreen()
	m.createAddScreen()
	m.createConfigScreen()

	m.pages.AddPage("menu", m.mainMenu, true, true)
	m.pages.AddPage("files", m.createFilesLayout(), true, false)
	m.pages.AddPage("add", m.addForm, true, false)
	m.pages.AddPage("config", m.configForm, true, false)

	m.currentScreen = entities.UIScreenMenu
}

// createMainMenu создает главное меню
func (m *Manager) createMainMenu() {
	m.mainMenu = tview.NewList().
		AddItem("📁 Файлы", "Список PDF файлов, сжатие и сохранение", '1', func() {
			m.switchToScreen(entities.UIScreenFiles)
		}).
		AddItem("➕ Добавить файлы", "Указать PDF файлы или директорию", '2', func() {
			m.switchToScreen(entities.UIScreenAdd)
		}).
		AddItem("⚙️ Конфигурация", "Настроить сервис, уровень и параметры обработки", '3', func() {
			m.switchToScreen(entities.UIScreenConfig)
		}).
		AddItem("❌ Выход", "Закрыть приложение", 'q', func() {
			m.Cleanup()
			m.app.Stop()
		})

	m.mainMenu.SetBorder(true).
		SetTitle("🔥 PDF Compressor - Главное меню").
		SetTitleAlign(tview.AlignCenter)

	m.mainMenu.SetSelectedBackgroundColor(tcell.ColorDarkBlue).
		SetSelectedTextColor(tcell.ColorWhite).
		SetMainTextColor(tcell.ColorWhite).
		SetSecondaryTextColor(tcell.ColorGray)
}

// createFilesScreen создает таблицу файлов, сводку и журнал
func (m *Manager) createFilesScreen() {
	m.fileTable = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	m.fileTable.SetBorder(true).
		SetTitle("📁 Файлы").
		SetTitleAlign(tview.AlignCenter)
	m.fileTable.SetSelectedFunc(func(row, column int) {
		if id, ok := m.selectedFileID(); ok && m.handlers.OnCompress != nil && !m.view.BatchMode() {
			go m.handlers.OnCompress(id)
		}
	})

	m.summaryView = tview.NewTextView().
		SetDynamicColors(true)
	m.summaryView.SetBorder(true).
		SetTitle("📊 Сводка").
		SetTitleAlign(tview.AlignCenter)

	m.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(MaxLogBufferSize)
	m.logView.SetBorder(true).
		SetTitle("📋 Журнал событий").
		SetTitleAlign(tview.AlignCenter)

	m.statusBar = tview.NewTextView().
		SetDynamicColors(true)
}

// createFilesLayout создает layout экрана файлов
func (m *Manager) createFilesLayout() *tview.Flex {
	bottom := tview.NewFlex().
		AddItem(m.summaryView, 0, 1, false).
		AddItem(m.logView, 0, 2, false)

	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(m.fileTable, 0, 1, true).
		AddItem(bottom, SummaryViewHeight, 0, false).
		AddItem(m.statusBar, 1, 0, false)
}

// createAddScreen создает форму добавления файлов
func (m *Manager) createAddScreen() {
	var paths, directory string

	m.addForm = tview.NewForm().
		AddInputField("PDF файлы (через ;)", "", 70, nil, func(text string) {
			paths = text
		}).
		AddInputField("Директория", "", 70, nil, func(text string) {
			directory = text
		}).
		AddButton("Добавить", func() {
			if list := splitPaths(paths); len(list) > 0 && m.handlers.OnAddPaths != nil {
				go m.handlers.OnAddPaths(list)
			}
			if dir := strings.TrimSpace(directory); dir != "" && m.handlers.OnAddDirectory != nil {
				go m.handlers.OnAddDirectory(dir)
			}
			m.switchToScreen(entities.UIScreenFiles)
		})

	m.addForm.SetBorder(true).
		SetTitle("➕ Добавление файлов (ESC - назад)").
		SetTitleAlign(tview.AlignCenter)
}

// createConfigScreen создает экран конфигурации
func (m *Manager) createConfigScreen() {
	levels := levelOptions()
	engines := []string{"simulate", "pdfcpu", "unipdf"}

	m.configForm = tview.NewForm().
		AddInputField("Адрес сервиса", m.config.Service.BaseURL, 60, nil, func(text string) {
			m.config.Service.BaseURL = text
		}).
		AddDropDown("Уровень сжатия", levels, indexOf(levels, m.config.Compression.Level), func(option string, optionIndex int) {
			m.config.Compression.Level = option
		}).
		AddCheckbox("Пакетный режим", m.config.Compression.BatchMode, func(checked bool) {
			m.config.Compression.BatchMode = checked
		}).
		AddDropDown("Локальное сжатие", engines, indexOf(engines, m.config.Compression.FallbackEngine), func(option string, optionIndex int) {
			m.config.Compression.FallbackEngine = option
		}).
		AddInputField("Лицензия UniPDF (UNIDOC_LICENSE_API_KEY)", m.config.Compression.UniPDFLicenseKey, 60, nil, func(text string) {
			m.config.Compression.UniPDFLicenseKey = text
		}).
		AddInputField("Параллельных воркеров", strconv.Itoa(m.config.Processing.ParallelWorkers), 10, tview.InputFieldInteger, func(text string) {
			if n, err := strconv.Atoi(text); err == nil {
				m.config.Processing.ParallelWorkers = n
			}
		}).
		AddInputField("Целевая директория", m.config.Output.TargetDirectory, 60, nil, func(text string) {
			m.config.Output.TargetDirectory = text
		}).
		AddCheckbox("Автостарт", m.config.Compression.AutoStart, func(checked bool) {
			m.config.Compression.AutoStart = checked
		}).
		AddButton("Сохранить", func() {
			cfg := m.config
			if m.handlers.OnSaveConfig != nil {
				if err := m.handlers.OnSaveConfig(&cfg); err != nil {
					m.AddLog("error", fmt.Sprintf("Конфигурация не сохранена: %v", err))
					return
				}
			}
			m.switchToScreen(entities.UIScreenMenu)
			m.mainMenu.SetCurrentItem(2)
		})

	m.configForm.SetBorder(true).
		SetTitle("🔥 PDF Compressor - Конфигурация (ESC - выйти без сохранения)").
		SetTitleAlign(tview.AlignCenter)
}

// setupKeyBindings настраивает горячие клавиши
func (m *Manager) setupKeyBindings() {
	m.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			m.switchToScreen(entities.UIScreenMenu)
			return nil
		case tcell.KeyF2:
			m.switchToScreen(entities.UIScreenFiles)
			return nil
		case tcell.KeyF3:
			m.switchToScreen(entities.UIScreenConfig)
			return nil
		case tcell.KeyEscape:
			if m.currentScreen != entities.UIScreenMenu {
				m.switchToScreen(entities.UIScreenMenu)
				return nil
			}
		}

		switch m.currentScreen {
		case entities.UIScreenMenu:
			if event.Rune() == 'q' || event.Rune() == 'Q' {
				m.Cleanup()
				m.app.Stop()
				return nil
			}
		case entities.UIScreenFiles:
			if m.handleFilesKey(event.Rune()) {
				return nil
			}
		}

		return event
	})
}

// handleFilesKey обрабатывает клавиши экрана файлов
func (m *Manager) handleFilesKey(key rune) bool {
	h := m.handlers
	switch key {
	case 'c':
		if h.OnCompress != nil {
			go h.OnCompress()
		}
	case 'b':
		if h.OnToggleBatch != nil {
			h.OnToggleBatch()
		}
	case 'l':
		if h.OnGlobalLevel != nil {
			h.OnGlobalLevel(m.view.GlobalLevel().Next())
		}
	case 'f':
		if id, ok := m.selectedFileID(); ok && h.OnFileLevel != nil {
			for _, f := range m.view.Files() {
				if f.ID == id {
					h.OnFileLevel(id, f.Level.Next())
				}
			}
		}
	case 'd':
		if id, ok := m.selectedFileID(); ok && h.OnRemove != nil {
			h.OnRemove(id)
		}
	case 's':
		if h.OnDownloadAll != nil {
			go h.OnDownloadAll()
		}
	case 'x':
		if h.OnClear != nil {
			h.OnClear()
		}
	case 'e':
		if h.OnCancel != nil {
			h.OnCancel()
		}
	case 'p':
		if h.OnProbe != nil {
			go h.OnProbe()
		}
	case 'a':
		m.switchToScreen(entities.UIScreenAdd)
	default:
		return false
	}
	return true
}

// switchToScreen переключает на указанный экран
func (m *Manager) switchToScreen(screen entities.UIScreen) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()

	m.currentScreen = screen

	switch screen {
	case entities.UIScreenMenu:
		m.pages.SwitchToPage("menu")
	case entities.UIScreenFiles:
		m.pages.SwitchToPage("files")
		m.app.SetFocus(m.fileTable)
	case entities.UIScreenAdd:
		m.pages.SwitchToPage("add")
	case entities.UIScreenConfig:
		m.pages.SwitchToPage("config")
	}
}

// render заполняет таблицу файлов и сводку из текущего состояния
func (m *Manager) render() {
	if m.fileTable == nil {
		return
	}

	files := m.view.Files()
	selected, _ := m.fileTable.GetSelection()

	m.fileTable.Clear()
	for col, title := range []string{"#", "Файл", "Размер", "Стр.", "Уровень", "Прогресс", "Результат"} {
		m.fileTable.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	for i, f := range files {
		row := i + 1
		preset := f.Level.Preset()

		pages := "-"
		if f.Pages > 0 {
			pages = strconv.Itoa(f.Pages)
		}

		result := "[gray]-"
		if f.HasResult() {
			result = fmt.Sprintf("[green]%s (-%.1f%%)", entities.FormatSize(*f.CompressedSize), entities.ClampPercent(*f.CompressionRatio))
		}

		m.fileTable.SetCell(row, 0, tview.NewTableCell(strconv.Itoa(f.Order+1)))
		m.fileTable.SetCell(row, 1, tview.NewTableCell(m.truncateFileName(f.Name, MaxFileNameLength, MaxFileNameDisplay)).SetExpansion(1))
		m.fileTable.SetCell(row, 2, tview.NewTableCell(f.DisplaySize))
		m.fileTable.SetCell(row, 3, tview.NewTableCell(pages))
		m.fileTable.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("[%s]%s", preset.Color, preset.Name)))
		m.fileTable.SetCell(row, 5, tview.NewTableCell(m.createProgressBar(float64(f.Progress), ProgressBarWidth)))
		m.fileTable.SetCell(row, 6, tview.NewTableCell(result))
	}

	if selected < 1 {
		selected = 1
	}
	if selected > len(files) {
		selected = len(files)
	}
	if selected > 0 {
		m.fileTable.Select(selected, 0)
	}

	m.summaryView.SetText(m.summaryText())
}

// summaryText формирует текст сводки
func (m *Manager) summaryText() string {
	s := m.view.Summary()
	level := m.view.GlobalLevel().Preset()

	mode := "одиночный"
	if m.view.BatchMode() {
		mode = "пакетный"
	}

	backendColor := "yellow"
	switch m.view.Backend() {
	case entities.BackendOnline:
		backendColor = "green"
	case entities.BackendOffline:
		backendColor = "red"
	}

	return fmt.Sprintf(
		"[yellow]🌐 Сервис:[%s] %s[white]\n"+
			"[yellow]🎯 Режим:[white] %s, уровень [%s]%s[white] (%s)\n\n"+
			"[green]📈 Файлов:[white] %d, сжато: [cyan]%d[white]\n"+
			"  • Исходный размер: [cyan]%s[white]\n"+
			"  • Сжатый размер: [cyan]%s[white]\n"+
			"  • Сэкономлено: [green]%s[white]\n"+
			"  • Среднее сжатие: [green]%.1f%%[white]\n\n"+
			"[gray]c[white] сжать [gray]b[white] пакет [gray]l/f[white] уровень [gray]s[white] сохранить [gray]a[white] добавить [gray]d/x[white] удалить [gray]e[white] отмена",
		backendColor, m.view.Backend(),
		mode, level.Color, level.Name, level.ExpectedReduction,
		s.TotalFiles, s.SuccessfulFiles,
		entities.FormatSize(s.TotalOriginalSize),
		entities.FormatSize(s.TotalCompressedSize),
		entities.FormatSize(s.TotalSavedSpace),
		entities.ClampPercent(s.AverageRatio),
	)
}

// selectedFileID идентификатор файла в выбранной строке
func (m *Manager) selectedFileID() (string, bool) {
	row, _ := m.fileTable.GetSelection()
	files := m.view.Files()
	if row < 1 || row > len(files) {
		return "", false
	}
	return files[row-1].ID, true
}

// truncateFileName корректно усекает имя файла с учетом UTF-8
func (m *Manager) truncateFileName(fileName string, maxLength, truncateAt int) string {
	runes := []rune(fileName)
	if len(runes) <= maxLength {
		return fileName
	}
	return string(runes[:truncateAt]) + "..."
}

// createProgressBar создает цветной прогресс-бар
func (m *Manager) createProgressBar(progress float64, width int) string {
	progress = entities.ClampPercent(progress)

	filled := int(math.Round(progress * float64(width) / 100))
	if filled > width {
		filled = width
	}

	const filledChar = "█"
	const emptyChar = "░"

	var color string
	switch {
	case progress < 25:
		color = "red"
	case progress < 50:
		color = "yellow"
	case progress < 75:
		color = "blue"
	default:
		color = "green"
	}

	return fmt.Sprintf("[%s]%s[gray]%s[white] %3.0f%%", color,
		strings.Repeat(filledChar, filled), strings.Repeat(emptyChar, width-filled), progress)
}

// AddLog добавляет запись в лог через канал (неблокирующе)
func (m *Manager) AddLog(level, message string) {
	var color string
	switch strings.ToLower(level) {
	case "error":
		color = "red"
	case "warning":
		color = "yellow"
	case "success":
		color = "green"
	case "debug":
		color = "gray"
	default:
		color = "white"
	}

	logLine := fmt.Sprintf("[%s]%s:[white] %s", color, strings.ToUpper(level), tview.Escape(message))

	select {
	case m.logChan <- logLine:
	default:
		// канал переполнен: запись пропускается
	}
}

// logProcessor обрабатывает логи в отдельной горутине с батчингом
func (m *Manager) logProcessor() {
	ticker := time.NewTicker(LogFlushInterval)
	defer ticker.Stop()

	batch := make([]string, 0, 50)

	for {
		select {
		case logLine := <-m.logChan:
			batch = append(batch, logLine)
			if len(batch) >= 20 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
				batch = make([]string, 0, 50)
			}

		case <-m.logDone:
			if len(batch) > 0 {
				m.flushLogBatch(batch)
			}
			return
		}
	}
}

// flushLogBatch сбрасывает батч логов в UI
func (m *Manager) flushLogBatch(batch []string) {
	m.statusMutex.Lock()
	m.logBuffer = append(m.logBuffer, batch...)
	if len(m.logBuffer) > MaxLogBufferSize {
		m.logBuffer = m.logBuffer[len(m.logBuffer)-MaxLogBufferSize:]
	}
	logText := strings.Join(m.logBuffer, "\n")
	m.statusMutex.Unlock()

	if m.logView != nil {
		m.app.QueueUpdateDraw(func() {
			m.logView.SetText(logText)
			m.logView.ScrollToEnd()
		})
	}
}

// Cleanup освобождает ресурсы менеджера (идемпотентный)
func (m *Manager) Cleanup() {
	m.logMutex.Lock()
	defer m.logMutex.Unlock()

	select {
	case <-m.logDone:
		return
	default:
		close(m.logDone)
	}
}

// Stop завершает приложение
func (m *Manager) Stop() {
	m.Cleanup()
	m.app.Stop()
}

func levelOptions() []string {
	levels := entities.AllLevels()
	options := make([]string, len(levels))
	for i, l := range levels {
		options[i] = string(l)
	}
	return options
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}

func splitPaths(text string) []string {
	var paths []string
	for _, p := range strings.Split(text, ";") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
