package domain

// ImageWriter интерфейс для записи изображения
type ImageWriter interface {
	WriteImage(filename string, img *Image) error
}

// ImageReader интерфейс для чтения эталонного изображения
type ImageReader interface {
	ReadImage(filename string) (*Image, error)
}

// ConfigReader интерфейс для чтения конфигурации
type ConfigReader interface {
	ReadConfig(path string) (*Config, error)
}

// Reporter выводит результаты серии запусков
type Reporter interface {
	ReportRuns(title string, runs []RunResult) error
	ReportHistogram(run RunResult) error
}
