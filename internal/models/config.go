package models

// TaskConfig mirrors the sections of a CRAB configuration
type TaskConfig struct {
	General GeneralSection `yaml:"general" json:"general"`
	JobType JobTypeSection `yaml:"jobType" json:"jobType"`
	Data    DataSection    `yaml:"data" json:"data"`
	Site    SiteSection    `yaml:"site" json:"site"`
}

type GeneralSection struct {
	RequestName     string `yaml:"requestName" json:"requestName"`
	WorkArea        string `yaml:"workArea" json:"workArea,omitempty"`
	TransferOutputs bool   `yaml:"transferOutputs" json:"transferOutputs"`
	TransferLogs    bool   `yaml:"transferLogs" json:"transferLogs"`
}

type JobTypeSection struct {
	PluginName       string   `yaml:"pluginName" json:"pluginName"`
	PSetName         string   `yaml:"psetName" json:"psetName"`
	ScriptExe        string   `yaml:"scriptExe" json:"scriptExe,omitempty"`
	InputFiles       []string `yaml:"inputFiles" json:"inputFiles,omitempty"`
	OutputFiles      []string `yaml:"outputFiles" json:"outputFiles,omitempty"`
	SendPythonFolder bool     `yaml:"sendPythonFolder" json:"sendPythonFolder"`
}

type DataSection struct {
	InputDataset     string `yaml:"inputDataset" json:"inputDataset"`
	InputDBS         string `yaml:"inputDBS" json:"inputDBS,omitempty"`
	Splitting        string `yaml:"splitting" json:"splitting"`
	UnitsPerJob      int    `yaml:"unitsPerJob" json:"unitsPerJob"`
	OutLFNDirBase    string `yaml:"outLFNDirBase" json:"outLFNDirBase,omitempty"`
	Publication      bool   `yaml:"publication" json:"publication"`
	OutputDatasetTag string `yaml:"outputDatasetTag" json:"outputDatasetTag,omitempty"`
}

type SiteSection struct {
	StorageSite string   `yaml:"storageSite" json:"storageSite"`
	Whitelist   []string `yaml:"whitelist" json:"whitelist,omitempty"`
	Blacklist   []string `yaml:"blacklist" json:"blacklist,omitempty"`
}
