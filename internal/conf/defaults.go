// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "bunrui-go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/bunrui.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", "Sunday")

	viper.SetDefault("classifier.debug", false)
	viper.SetDefault("classifier.modelpath", "models/efficientnet_b0.tflite")
	viper.SetDefault("classifier.labelpath", "models/imagenet_class_index.json")
	viper.SetDefault("classifier.localepath", "models/imagenet_class_index_jp.json")
	viper.SetDefault("classifier.locale", "ja")
	viper.SetDefault("classifier.topk", DefaultTopK)
	viper.SetDefault("classifier.threads", 0)
	viper.SetDefault("classifier.usexnnpack", false)
	viper.SetDefault("classifier.modelname", "EfficientNetB0")
	viper.SetDefault("classifier.modelversion", "v1.0")

	viper.SetDefault("upload.debug", false)
	viper.SetDefault("upload.path", "uploads/")
	viper.SetDefault("upload.maxsize", DefaultMaxUploadSize)
	viper.SetDefault("upload.allowedextensions", DefaultImageExtensions)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "logs/web.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 1048576)
	viper.SetDefault("webserver.log.rotationday", "Sunday")

	viper.SetDefault("security.debug", false)
	viper.SetDefault("security.host", "")
	viper.SetDefault("security.autotls", false)
	viper.SetDefault("security.redirecttohttps", false)

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.debug", false)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "bunrui.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "bunrui")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "bunrui")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
