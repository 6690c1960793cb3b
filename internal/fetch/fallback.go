// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "github.com/pdiddy/scholarcast/pkg/types"

// samplePapers is the dependency-free fetch fallback data set. Entries are
// deterministic so demo runs are reproducible; source is tagged "fallback"
// so consumers can tell degraded results apart.
var samplePapers = []types.Paper{
	{
		Identifier:    "sample-brain-tumor-2024",
		Title:         "Deep Learning Approaches for Brain Tumor Detection in MRI Images",
		Authors:       []string{"Sarah Johnson", "Michael Chen", "Lisa Wang"},
		Abstract:      "This paper presents a novel deep learning framework for automated brain tumor detection in MRI images using convolutional neural networks. Our approach achieves 94.2% accuracy on the BraTS dataset, significantly outperforming traditional methods.",
		URL:           "https://example.com/paper1",
		PDFURL:        "https://example.com/paper1.pdf",
		PublishedDate: "2024",
		Citations:     127,
		Venue:         "Nature Machine Intelligence",
		Source:        "fallback",
	},
	{
		Identifier:    "sample-medical-ai-review-2024",
		Title:         "Artificial Intelligence in Medical Diagnosis: A Comprehensive Review",
		Authors:       []string{"Robert Smith", "Emily Davis"},
		Abstract:      "We provide a comprehensive review of AI applications in medical diagnosis, covering recent advances in computer vision, natural language processing, and multimodal learning approaches.",
		URL:           "https://example.com/paper2",
		PDFURL:        "https://example.com/paper2.pdf",
		PublishedDate: "2024",
		Citations:     89,
		Venue:         "Journal of Medical AI",
		Source:        "fallback",
	},
	{
		Identifier:    "sample-nn-healthcare-2024",
		Title:         "Neural Networks for Healthcare: Challenges and Opportunities",
		Authors:       []string{"Maria Garcia", "James Wilson"},
		Abstract:      "This study explores the application of neural networks in healthcare, discussing challenges related to data privacy, model interpretability, and clinical validation.",
		URL:           "https://example.com/paper3",
		PDFURL:        "https://example.com/paper3.pdf",
		PublishedDate: "2024",
		Citations:     156,
		Venue:         "IEEE Transactions on Biomedical Engineering",
		Source:        "fallback",
	},
}

// SamplePapers returns up to maxResults deterministic demo papers. It is
// the fallback when every fetch backend is unreachable and never fails.
func SamplePapers(maxResults int) []types.Paper {
	if maxResults <= 0 || maxResults > len(samplePapers) {
		maxResults = len(samplePapers)
	}

	papers := make([]types.Paper, maxResults)
	copy(papers, samplePapers[:maxResults])
	for i := range papers {
		papers[i].ID = PaperID(papers[i].Title, papers[i].Authors)
		// Rank by list position, mirroring the live backends.
		if maxResults > 1 {
			papers[i].RelevanceScore = 1.0 - float64(i)/float64(maxResults-1)*0.9
		} else {
			papers[i].RelevanceScore = 1.0
		}
	}
	return papers
}
