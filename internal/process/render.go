package process

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelsos/crab-monitor/internal/models"
)

// RenderConfig renders cfg as a python configuration file understood by
// crab submit
func RenderConfig(cfg models.TaskConfig) string {
	var b strings.Builder

	b.WriteString("from CRABClient.UserUtilities import config\n\n")
	b.WriteString("config = config()\n\n")

	b.WriteString("config.section_('General')\n")
	writeString(&b, "General.requestName", cfg.General.RequestName)
	writeOptionalString(&b, "General.workArea", cfg.General.WorkArea)
	writeBool(&b, "General.transferOutputs", cfg.General.TransferOutputs)
	writeBool(&b, "General.transferLogs", cfg.General.TransferLogs)

	b.WriteString("\nconfig.section_('JobType')\n")
	writeString(&b, "JobType.pluginName", cfg.JobType.PluginName)
	writeString(&b, "JobType.psetName", cfg.JobType.PSetName)
	writeOptionalString(&b, "JobType.scriptExe", cfg.JobType.ScriptExe)
	writeList(&b, "JobType.inputFiles", cfg.JobType.InputFiles)
	writeList(&b, "JobType.outputFiles", cfg.JobType.OutputFiles)
	writeBool(&b, "JobType.sendPythonFolder", cfg.JobType.SendPythonFolder)

	b.WriteString("\nconfig.section_('Data')\n")
	writeString(&b, "Data.inputDataset", cfg.Data.InputDataset)
	writeOptionalString(&b, "Data.inputDBS", cfg.Data.InputDBS)
	writeOptionalString(&b, "Data.splitting", cfg.Data.Splitting)
	if cfg.Data.UnitsPerJob > 0 {
		fmt.Fprintf(&b, "config.Data.unitsPerJob = %d\n", cfg.Data.UnitsPerJob)
	}
	writeOptionalString(&b, "Data.outLFNDirBase", cfg.Data.OutLFNDirBase)
	writeBool(&b, "Data.publication", cfg.Data.Publication)
	writeOptionalString(&b, "Data.outputDatasetTag", cfg.Data.OutputDatasetTag)

	b.WriteString("\nconfig.section_('Site')\n")
	writeString(&b, "Site.storageSite", cfg.Site.StorageSite)
	writeList(&b, "Site.whitelist", cfg.Site.Whitelist)
	writeList(&b, "Site.blacklist", cfg.Site.Blacklist)

	return b.String()
}

func writeString(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "config.%s = %s\n", key, pyString(value))
}

func writeOptionalString(b *strings.Builder, key, value string) {
	if value != "" {
		writeString(b, key, value)
	}
}

func writeBool(b *strings.Builder, key string, value bool) {
	v := "False"
	if value {
		v = "True"
	}
	fmt.Fprintf(b, "config.%s = %s\n", key, v)
}

func writeList(b *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		return
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = pyString(v)
	}
	fmt.Fprintf(b, "config.%s = [%s]\n", key, strings.Join(quoted, ", "))
}

// pyString quotes s as a python string literal. Go's escaping of ASCII
// strings is a subset of python's.
func pyString(s string) string {
	return strconv.QuoteToASCII(s)
}
