// conf/consts.go hard coded constants
package conf

const (
	InputWidth  = 224 // width of the image fed to the classifier
	InputHeight = 224 // height of the image fed to the classifier
	NumChannels = 3   // number of color channels of the image fed to the classifier

	DefaultTopK         = 5  // default number of ranked predictions per image
	DefaultItemsPerPage = 10 // number of result rows per history page

	DefaultMaxUploadSize = 10 * 1024 * 1024 // default maximum upload size in bytes
)

// DefaultImageExtensions are the file extensions accepted for upload when the
// configuration does not override them.
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}
