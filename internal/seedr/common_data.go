package seedr

// Shared lists for synthetic certificate request generation.

var defaultPrograms = []string{
	"Blockchain Development Internship",
	"Smart Contract Security Internship",
	"Full Stack Web3 Internship",
	"Data Engineering Internship",
	"Cloud Infrastructure Internship",
	"Machine Learning Internship",
	"DevOps Engineering Internship",
	"Mobile Development Internship",
	"Quality Engineering Internship",
	"Product Design Internship",
}
