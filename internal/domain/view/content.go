package view

// Author is a credited project member.
type Author struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

// HomeContent is the landing page text.
type HomeContent struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Authors  []Author `json:"authors"`
	Intro    string   `json:"intro"`
}

// PageTitle is the browser title of the dashboard.
const PageTitle = "Visualisasi Data Kesehatan Mental di Industri Teknologi"

// Footer is shown under every view.
const Footer = "Kelompok 5 - Visualisasi Data Kesehatan Mental di Industri Teknologi - STT Terpadu Nurul Fikri"

// HomePage returns the landing page content.
func HomePage() HomeContent {
	return HomeContent{
		Title:    "Proyek pada Mata Kuliah Visualisasi Data",
		Subtitle: PageTitle,
		Authors: []Author{
			{Name: "Muhammad Nizar Al-Faiq", StudentID: "0110223298"},
			{Name: "Sabrina Marliani", StudentID: "0110223141"},
		},
		Intro: captions[Home],
	}
}

var headings = map[Label]string{
	Home:               "Proyek pada Mata Kuliah Visualisasi Data",
	CountryCounts:      "Jumlah Responden per Negara",
	AgeDistribution:    "Distribusi Usia Responden",
	AgeVsTreatment:     "Usia vs Keputusan Mencari Pengobatan",
	CorrelationHeatmap: "Korelasi Usia & Pengobatan",
	GenderDistribution: "Distribusi Jenis Kelamin Responden",
}

// Captions keep the original line breaks as "\n".
var captions = map[Label]string{
	Home: "Masalah kesehatan mental seperti stres, kecemasan, dan depresi sering kali tidak mendapatkan perhatian yang setara dengan kesehatan fisik.\n" +
		"Terutama di industri teknologi yang dikenal memiliki tekanan tinggi, jam kerja panjang, dan ekspektasi performa besar.\n" +
		"Aplikasi ini menampilkan visualisasi data untuk membantu memahami isu ini lebih baik.",
	CountryCounts: "Mayoritas responden berasal dari Amerika Serikat, menunjukkan dominasi data dari negara tersebut.\n" +
		"Dominasi jumlah data ini menunjukkan bahwa hasil analisis lebih mencerminkan kondisi di negara-negara barat,\n" +
		"sehingga perlu kehati-hatian dalam menarik kesimpulan secara global.",
	AgeDistribution: "Sebagian besar responden berusia 18–30 tahun, menunjukkan dominasi generasi muda dalam data.\n" +
		"Responden usia lanjut sangat sedikit, sehingga hasil analisis lebih merefleksikan kondisi usia muda di industri teknologi.",
	AgeVsTreatment: "Responden dari berbagai usia terlihat terbagi cukup merata antara yang memilih untuk mencari pengobatan (kode 1)\n" +
		"dan yang tidak (kode 0). Tidak terlihat pola khusus antara usia dan keputusan mencari pengobatan,\n" +
		"artinya usia tidak terlalu memengaruhi keputusan responden dalam mencari bantuan kesehatan mental.",
	CorrelationHeatmap: "Warna merah pada heatmap menunjukkan nilai korelasi yang rendah antara usia dan keputusan mencari pengobatan.\n" +
		"Artinya, tidak terdapat hubungan yang kuat antara usia responden dengan keputusan mereka untuk mencari pengobatan.\n" +
		"Baik responden muda maupun tua memiliki kemungkinan yang hampir sama dalam hal ini.",
	GenderDistribution: "Mayoritas responden berjenis kelamin laki-laki (77,6%), diikuti oleh perempuan (15,5%), dan lainnya (6,9%).\n" +
		"Dominasi responden laki-laki menunjukkan bahwa data ini lebih merepresentasikan persepsi pria\n" +
		"terhadap kesehatan mental di industri teknologi. Oleh karena itu, interpretasi data harus mempertimbangkan\n" +
		"ketimpangan ini agar tidak bias terhadap satu kelompok gender saja.",
}
